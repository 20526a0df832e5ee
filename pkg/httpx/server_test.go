package httpx_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/ghuser/ticketdesk/pkg/httpx"
)

func okHandler(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
}

func newTestRouter(cfg httpx.ServerConfig, outer ...func(http.Handler) http.Handler) http.Handler {
	r := httpx.NewRouter(cfg, outer...)
	r.Get("/ping", okHandler)
	r.Patch("/ping", okHandler)
	r.Post("/echo", func(w http.ResponseWriter, r *http.Request) {
		if _, err := io.ReadAll(r.Body); err != nil {
			w.WriteHeader(http.StatusRequestEntityTooLarge)
			return
		}
		w.WriteHeader(http.StatusOK)
	})
	return r
}

func TestNewRouter_SecurityHeaders(t *testing.T) {
	tests := []struct {
		name    string
		dev     bool
		wantSet bool
	}{
		{"production", false, true},
		{"development", true, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := httptest.NewRecorder()
			newTestRouter(httpx.ServerConfig{IsDevelopment: tt.dev}).
				ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/ping", http.NoBody))

			checks := map[string]string{
				"X-Content-Type-Options":  "nosniff",
				"X-Frame-Options":         "DENY",
				"Referrer-Policy":         "strict-origin-when-cross-origin",
				"Content-Security-Policy": "default-src 'self'",
			}
			for header, want := range checks {
				got := rr.Header().Get(header)
				if tt.wantSet && got != want {
					t.Errorf("%s: got %q, want %q", header, got, want)
				}
				if !tt.wantSet && got != "" {
					t.Errorf("%s should be unset in development, got %q", header, got)
				}
			}
		})
	}
}

func TestNewRouter_OuterMiddlewareRunsFirst(t *testing.T) {
	var order []string
	mark := func(name string) func(http.Handler) http.Handler {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				order = append(order, name)
				next.ServeHTTP(w, r)
			})
		}
	}

	r := newTestRouter(httpx.ServerConfig{IsDevelopment: true}, mark("recovery"), mark("logger"))
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/ping", http.NoBody))

	if strings.Join(order, ",") != "recovery,logger" {
		t.Fatalf("unexpected order: %v", order)
	}
}

func TestNewRouter_BodyLimit(t *testing.T) {
	r := newTestRouter(httpx.ServerConfig{IsDevelopment: true, MaxBodyBytes: 10})

	tests := []struct {
		body string
		want int
	}{
		{strings.Repeat("a", 10), http.StatusOK},
		{strings.Repeat("a", 11), http.StatusRequestEntityTooLarge},
	}
	for _, tt := range tests {
		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/echo", strings.NewReader(tt.body)))
		if rr.Code != tt.want {
			t.Errorf("body of %d bytes: expected %d, got %d", len(tt.body), tt.want, rr.Code)
		}
	}
}

func TestNewRouter_RateLimitFromConfig(t *testing.T) {
	r := newTestRouter(httpx.ServerConfig{RateLimitPerMinute: 2, IsDevelopment: true})

	codes := make([]int, 3)
	for i := range codes {
		req := httptest.NewRequest(http.MethodGet, "/ping", http.NoBody)
		req.RemoteAddr = "203.0.113.7:4000"
		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, req)
		codes[i] = rr.Code
	}

	if codes[0] != http.StatusOK || codes[1] != http.StatusOK {
		t.Fatalf("expected first two requests to pass, got %v", codes)
	}
	if codes[2] != http.StatusTooManyRequests {
		t.Fatalf("expected third request to be limited, got %d", codes[2])
	}
}

func TestNewRouter_CORSAllowsPatch(t *testing.T) {
	r := newTestRouter(httpx.ServerConfig{CORSAllowedOrigins: "https://desk.example.com, ", IsDevelopment: true})

	req := httptest.NewRequest(http.MethodOptions, "/ping", http.NoBody)
	req.Header.Set("Origin", "https://desk.example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodPatch)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	if got := rr.Header().Get("Access-Control-Allow-Origin"); got != "https://desk.example.com" {
		t.Fatalf("Access-Control-Allow-Origin: got %q", got)
	}
	if got := rr.Header().Get("Access-Control-Allow-Methods"); !strings.Contains(got, http.MethodPatch) {
		t.Fatalf("Access-Control-Allow-Methods: got %q", got)
	}
}

func TestNewServer(t *testing.T) {
	srv := httpx.NewServer(":9090", http.NewServeMux())
	if srv.Addr != ":9090" {
		t.Errorf("unexpected addr %q", srv.Addr)
	}
	if srv.ReadHeaderTimeout != 5*time.Second || srv.WriteTimeout != 30*time.Second {
		t.Errorf("unexpected timeouts: %+v", srv)
	}
}
