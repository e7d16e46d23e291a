package internal

import (
	"strings"
	"testing"
)

func TestAuthConfig_DisabledMode(t *testing.T) {
	cfg := AuthConfig{Mode: "disabled", Token: ""}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("disabled mode should pass: %v", err)
	}
	if cfg.AuthEnabled() {
		t.Error("disabled mode should not be enabled")
	}
}

func TestAuthConfig_EmptyModeDefaultsDisabled(t *testing.T) {
	cfg := AuthConfig{Mode: "", Token: ""}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("empty mode should default to disabled: %v", err)
	}
	if cfg.Mode != AuthModeDisabled {
		t.Errorf("mode = %q, want %q", cfg.Mode, AuthModeDisabled)
	}
}

func TestAuthConfig_TokenModeValid(t *testing.T) {
	cfg := AuthConfig{Mode: "token", Token: "mysecret"}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("token mode with token should pass: %v", err)
	}
	if !cfg.AuthEnabled() {
		t.Error("token mode should be enabled")
	}
}

func TestAuthConfig_TokenModeEmptyToken(t *testing.T) {
	cfg := AuthConfig{Mode: "token", Token: ""}
	err := cfg.Validate()
	if err == nil {
		t.Fatal("token mode with empty token should fail")
	}
	if !strings.Contains(err.Error(), "token is empty") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestAuthConfig_InvalidMode(t *testing.T) {
	cfg := AuthConfig{Mode: "magic", Token: "x"}
	err := cfg.Validate()
	if err == nil {
		t.Fatal("invalid mode should fail validation")
	}
}

func TestFullConfig_AuthValidationCalled(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Auth.Mode = "token"
	cfg.Auth.Token = ""
	err := cfg.Validate()
	if err == nil {
		t.Fatal("full config validate should catch auth error")
	}
}

func TestParseConfig_Workers(t *testing.T) {
	for _, n := range []int{0, 65, -1} {
		cfg := ParseConfig{DecodeWorkers: n}
		if err := cfg.Validate(); err == nil {
			t.Errorf("decode_workers=%d should fail validation", n)
		}
	}
	cfg := ParseConfig{Strict: true, DecodeWorkers: 8}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("valid parse config: %v", err)
	}
	opts := cfg.Options()
	if !opts.Strict || opts.Workers != 8 {
		t.Errorf("options = %+v", opts)
	}
}

func TestFullConfig_Defaults(t *testing.T) {
	cfg := NewDefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaults should validate: %v", err)
	}
	if cfg.Library.Path != "./library" || cfg.Parse.DecodeWorkers != 4 || cfg.Parse.Strict {
		t.Errorf("unexpected defaults: %+v", cfg)
	}
}

func TestFullConfig_LibraryRequired(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Library.Path = ""
	if err := cfg.Validate(); err == nil {
		t.Fatal("empty library path should fail")
	}
}
