package config

import (
	"strings"
	"testing"
	"time"
)

func productionConfig() *Config {
	return &Config{
		Environment:           EnvProduction,
		SessionAuthKey:        strings.Repeat("a", minAuthKeyLen),
		SessionEncryptionKey:  strings.Repeat("b", minEncryptionKeyLen),
		LogLevel:              "info",
		CORSAllowedOrigins:    "https://desk.example.com",
		TicketEscalationAfter: time.Hour,
	}
}

func TestValidateForProduction(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr []string
	}{
		{name: "valid", mutate: func(*Config) {}},
		{
			name:   "development skips checks",
			mutate: func(c *Config) { *c = Config{Environment: EnvDevelopment, CORSAllowedOrigins: "*"} },
		},
		{
			name: "short keys reported together",
			mutate: func(c *Config) {
				c.SessionAuthKey = "short"
				c.SessionEncryptionKey = "short"
			},
			wantErr: []string{"SESSION_AUTH_KEY", "SESSION_ENCRYPTION_KEY"},
		},
		{
			name:    "debug logging",
			mutate:  func(c *Config) { c.LogLevel = " DEBUG" },
			wantErr: []string{"LOG_LEVEL"},
		},
		{
			name:    "wildcard cors",
			mutate:  func(c *Config) { c.CORSAllowedOrigins = "*" },
			wantErr: []string{"CORS_ALLOWED_ORIGINS"},
		},
		{
			name: "temporal without escalation delay",
			mutate: func(c *Config) {
				c.TemporalEnabled = true
				c.TicketEscalationAfter = 0
			},
			wantErr: []string{"TICKET_ESCALATION_AFTER"},
		},
		{
			name:   "zero delay is fine without temporal",
			mutate: func(c *Config) { c.TicketEscalationAfter = 0 },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := productionConfig()
			tt.mutate(cfg)

			err := ValidateForProduction(cfg)
			if len(tt.wantErr) == 0 {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatal("expected error")
			}
			for _, want := range tt.wantErr {
				if !strings.Contains(err.Error(), want) {
					t.Errorf("error %q does not mention %s", err, want)
				}
			}
		})
	}
}

func TestDescribe_MasksSecrets(t *testing.T) {
	cfg := productionConfig()
	cfg.SentryDSN = "https://secret-key@sentry.example.com/1"

	out := Describe(cfg)
	if out == "" {
		t.Fatal("expected a rendered config")
	}
	if strings.Contains(out, "secret-key") {
		t.Fatalf("sentry dsn leaked: %s", out)
	}
}
