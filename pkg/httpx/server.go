// Package httpx holds the HTTP plumbing shared by the API: the router with its
// standard middleware chain, the server, JSON responses and /health.
package httpx

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/unrolled/secure"
)

const (
	defaultRateLimit      = 100
	defaultBodyLimit      = 64 << 10 // tickets are small; 64 KiB is generous
	defaultHandlerTimeout = 30 * time.Second
)

// ServerConfig configures NewRouter. Zero values fall back to defaults.
type ServerConfig struct {
	IsDevelopment bool
	// CORSAllowedOrigins is comma-separated; "*" allows any origin (dev only).
	CORSAllowedOrigins string
	RateLimitPerMinute int
	MaxBodyBytes       int64
	HandlerTimeout     time.Duration
}

// NewRouter returns a chi.Mux with the standard chain installed. outer runs
// first, in order, wrapping everything else; the API passes recovery, Sentry,
// request ID, OTel and request logging here. After them come RealIP, the
// per-IP rate limit, CORS, the body cap, the handler timeout and the
// security headers.
func NewRouter(cfg ServerConfig, outer ...func(http.Handler) http.Handler) *chi.Mux {
	r := chi.NewRouter()
	r.Use(outer...)
	r.Use(
		middleware.RealIP,
		httprate.LimitByIP(orDefault(cfg.RateLimitPerMinute, defaultRateLimit), time.Minute),
		CORSMiddleware(cfg.CORSAllowedOrigins),
		RequestBodyLimit(orDefault(cfg.MaxBodyBytes, defaultBodyLimit)),
		middleware.Timeout(orDefault(cfg.HandlerTimeout, defaultHandlerTimeout)),
		securityHeaders(cfg.IsDevelopment).Handler,
	)
	return r
}

func orDefault[T int | int64 | time.Duration](v, def T) T {
	if v <= 0 {
		return def
	}
	return v
}

// securityHeaders sets HSTS (over TLS), frame denial, nosniff, referrer and
// permissions policies. In development unrolled/secure adds nothing.
func securityHeaders(isDevelopment bool) *secure.Secure {
	return secure.New(secure.Options{
		STSSeconds:            63072000,
		STSIncludeSubdomains:  true,
		FrameDeny:             true,
		ContentTypeNosniff:    true,
		BrowserXssFilter:      true,
		ReferrerPolicy:        "strict-origin-when-cross-origin",
		ContentSecurityPolicy: "default-src 'self'",
		PermissionsPolicy:     "geolocation=(), microphone=(), camera=(), usb=(), magnetometer=(), gyroscope=()",
		IsDevelopment:         isDevelopment,
	})
}

// CORSMiddleware allows the ticket API's methods from allowedOrigins.
func CORSMiddleware(allowedOrigins string) func(http.Handler) http.Handler {
	return cors.Handler(cors.Options{
		AllowedOrigins:   parseOrigins(allowedOrigins),
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-Id"},
		ExposedHeaders:   []string{"X-Request-Id"},
		AllowCredentials: false,
		MaxAge:           300,
	})
}

func parseOrigins(s string) []string {
	var out []string
	for p := range strings.SplitSeq(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return []string{"*"}
	}
	return out
}

// RequestBodyLimit caps request bodies at maxBytes. Reads past the cap fail
// with *http.MaxBytesError, which pkg/validator turns into a 413.
func RequestBodyLimit(maxBytes int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
			next.ServeHTTP(w, r)
		})
	}
}

// NewServer returns an *http.Server for addr with conservative timeouts.
func NewServer(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}
}
