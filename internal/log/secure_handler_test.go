package log

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

// TestSecureHandlerSanitizesSensitiveKeys tests that sensitive keys are masked.
func TestSecureHandlerSanitizesSensitiveKeys(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		key      string
		value    string
		wantMask bool
	}{
		{"cookie key is sanitized", "cookie", "session=abc123", true},
		{"Cookie key (uppercase) is sanitized", "Cookie", "session=abc123", true},
		{"authorization key is sanitized", "authorization", "Basic dXNlcjpwYXNz", true},
		{"password keyword in key is sanitized", "db_password", "hunter2", true},
		{"token keyword in key is sanitized", "github_token", "ghp_xxx", true},
		{"url key is kept", "url", "https://example.com/feed", false},
		{"host key is kept", "host", "blog.example.com", false},
		{"keyboard is not a credential", "keyboard", "qwerty", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var buf bytes.Buffer
			logger := slog.New(NewSecureHandler(slog.NewTextHandler(&buf, nil)))
			logger.Info("test", tt.key, tt.value)

			out := buf.String()
			gotMask := strings.Contains(out, MaskValue)
			if gotMask != tt.wantMask {
				t.Errorf("mask = %v, want %v; output: %s", gotMask, tt.wantMask, out)
			}
			if tt.wantMask && strings.Contains(out, tt.value) {
				t.Errorf("sensitive value leaked into output: %s", out)
			}
		})
	}
}

// TestSecureHandlerSanitizesSensitiveValues tests value pattern matching.
func TestSecureHandlerSanitizesSensitiveValues(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		value    string
		wantMask bool
	}{
		{"bearer token", "Bearer eyJhbGciOiJIUzI1NiJ9", true},
		{"basic auth", "Basic dXNlcjpwYXNz", true},
		{"jwt", "eyJhbGciOiJIUzI1NiJ9.eyJzdWIiOiIxIn0.sig", true},
		{"plain URL", "https://example.com/rss.xml", false},
		{"short string", "hello", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var buf bytes.Buffer
			logger := slog.New(NewSecureHandler(slog.NewTextHandler(&buf, nil)))
			logger.Info("test", "header", tt.value)

			gotMask := strings.Contains(buf.String(), MaskValue)
			if gotMask != tt.wantMask {
				t.Errorf("mask = %v, want %v; output: %s", gotMask, tt.wantMask, buf.String())
			}
		})
	}
}

// TestSecureHandlerSanitizesGroups tests that grouped attributes are masked.
func TestSecureHandlerSanitizesGroups(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := slog.New(NewSecureHandler(slog.NewTextHandler(&buf, nil)))
	logger.Info("test", slog.Group("request",
		slog.String("cookie", "session=abc"),
		slog.String("url", "https://example.com"),
	))

	out := buf.String()
	if strings.Contains(out, "session=abc") {
		t.Errorf("grouped cookie leaked into output: %s", out)
	}
	if !strings.Contains(out, "https://example.com") {
		t.Errorf("non-sensitive grouped attribute dropped: %s", out)
	}
}

// TestSecureHandlerWithAttrs tests that pre-bound attributes are masked.
func TestSecureHandlerWithAttrs(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := slog.New(NewSecureHandler(slog.NewTextHandler(&buf, nil))).
		With("cookie", "session=abc")
	logger.Info("test")

	if strings.Contains(buf.String(), "session=abc") {
		t.Errorf("bound cookie leaked into output: %s", buf.String())
	}
}

// TestNewSecureLogger tests level selection.
func TestNewSecureLogger(t *testing.T) {
	t.Parallel()

	t.Run("verbose enables debug", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		logger := NewSecureLogger(&buf, true)
		logger.Debug("debug message")
		if !strings.Contains(buf.String(), "debug message") {
			t.Error("expected debug output in verbose mode")
		}
	})

	t.Run("non-verbose suppresses info", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		logger := NewSecureLogger(&buf, false)
		logger.Info("info message")
		if buf.Len() != 0 {
			t.Errorf("expected no output below warn level, got %s", buf.String())
		}
	})
}
