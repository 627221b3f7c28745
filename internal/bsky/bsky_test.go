package bsky

import (
	"context"
	"errors"
	"strings"
	"testing"
)

func TestPostWithoutCredentials(t *testing.T) {
	tests := []struct {
		name        string
		handle      string
		password    string
		wantMissing string
	}{
		{"both missing", "", "", "BSKY_HANDLE and BSKY_APP_PASSWORD"},
		{"handle missing", "", "secret", "BSKY_HANDLE"},
		{"password missing", "bot.bsky.social", "", "BSKY_APP_PASSWORD"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewClient("", tt.handle, tt.password)

			err := c.Post(context.Background(), "hello")
			var cerr *ConfigurationError
			if !errors.As(err, &cerr) {
				t.Fatalf("Post() returned %T, want *ConfigurationError", err)
			}
			if cerr.Missing != tt.wantMissing {
				t.Errorf("ConfigurationError.Missing = %q, want %q", cerr.Missing, tt.wantMissing)
			}
			if !strings.Contains(cerr.Error(), tt.wantMissing) {
				t.Errorf("error text should name the missing credential: %q", cerr.Error())
			}
		})
	}
}

func TestNewClientDefaultsHost(t *testing.T) {
	c := NewClient("", "bot.bsky.social", "secret")
	if c.host != DefaultPDSHost {
		t.Errorf("host = %q, want %q", c.host, DefaultPDSHost)
	}

	c = NewClient("https://pds.example.test", "bot.bsky.social", "secret")
	if c.host != "https://pds.example.test" {
		t.Errorf("host = %q, want the configured value", c.host)
	}
}

func TestPublishErrorUnwraps(t *testing.T) {
	inner := errors.New("session expired")
	err := &PublishError{Err: inner}
	if !errors.Is(err, inner) {
		t.Error("PublishError should unwrap to the underlying error")
	}
	if !strings.Contains(err.Error(), "session expired") {
		t.Errorf("error text should carry the cause: %q", err.Error())
	}
}
