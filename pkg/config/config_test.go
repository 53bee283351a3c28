package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("APP_ENV", "development")
	t.Setenv("JWT_SECRET_KEY", "test-secret")

	c, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if c.Port != "5000" {
		t.Errorf("expected default port 5000, got %q", c.Port)
	}
	if c.DBDriver != "sqlite" {
		t.Errorf("expected sqlite driver by default, got %q", c.DBDriver)
	}
	if c.TokenTTL != 24*time.Hour {
		t.Errorf("expected 24h token ttl, got %v", c.TokenTTL)
	}
	if c.JWTSecret != "test-secret" {
		t.Errorf("expected secret from unprefixed key, got %q", c.JWTSecret)
	}
	if len(c.CORSOrigins) != 4 {
		t.Errorf("expected 4 default cors origins, got %v", c.CORSOrigins)
	}
}

func TestLoadPrefixedOverride(t *testing.T) {
	t.Setenv("APP_ENV", "staging")
	t.Setenv("PETPAL_PORT", "8088")
	t.Setenv("PETPAL_WS_PING_INTERVAL", "5s")

	c, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if c.Port != "8088" {
		t.Errorf("expected prefixed port, got %q", c.Port)
	}
	if c.WSPingInterval != 5*time.Second {
		t.Errorf("expected 5s ping interval, got %v", c.WSPingInterval)
	}
}

func TestValidate(t *testing.T) {
	base := Config{AppEnv: "development", DBDriver: "sqlite", TokenTTL: time.Hour, WSSendBuffer: 8}

	cases := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{"valid", func(c *Config) {}, false},
		{"unknown env", func(c *Config) { c.AppEnv = "qa" }, true},
		{"unknown driver", func(c *Config) { c.DBDriver = "oracle" }, true},
		{"production without secret", func(c *Config) { c.AppEnv = "production" }, true},
		{"production with secret", func(c *Config) { c.AppEnv = "production"; c.JWTSecret = "s" }, false},
		{"zero ttl", func(c *Config) { c.TokenTTL = 0 }, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := base
			tc.mutate(&c)
			err := c.Validate()
			if (err != nil) != tc.wantErr {
				t.Fatalf("wantErr=%v got %v", tc.wantErr, err)
			}
		})
	}
}
