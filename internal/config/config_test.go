package config

import "testing"

func TestLoadDefaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("AUTH_SECRET", " secret-with-padding ")
	t.Setenv("ACCESS_TOKEN_TTL_MINUTES", "")
	t.Setenv("SETTINGS_TTL_SECONDS", "")

	cfg := Load()

	if cfg.Port != "8080" {
		t.Fatalf("Port = %q, want 8080", cfg.Port)
	}
	if cfg.Address() != ":8080" {
		t.Fatalf("Address = %q", cfg.Address())
	}
	if cfg.AuthSecret != "secret-with-padding" {
		t.Fatalf("AuthSecret not trimmed: %q", cfg.AuthSecret)
	}
	if cfg.AccessTokenTTLMinutes != 480 {
		t.Fatalf("AccessTokenTTLMinutes = %d, want 480", cfg.AccessTokenTTLMinutes)
	}
	if cfg.SettingsTTLSeconds != 300 {
		t.Fatalf("SettingsTTLSeconds = %d, want 300", cfg.SettingsTTLSeconds)
	}
	if cfg.BlobDir != "data/uploads" || cfg.BlobBaseURL != "/files" {
		t.Fatalf("blob defaults = %q %q", cfg.BlobDir, cfg.BlobBaseURL)
	}
}

func TestLoadRejectsBadTTL(t *testing.T) {
	t.Setenv("ACCESS_TOKEN_TTL_MINUTES", "zero")
	t.Setenv("SETTINGS_TTL_SECONDS", "-5")

	cfg := Load()
	if cfg.AccessTokenTTLMinutes != 480 {
		t.Fatalf("bad token TTL should fall back to 480, got %d", cfg.AccessTokenTTLMinutes)
	}
	if cfg.SettingsTTLSeconds != 300 {
		t.Fatalf("negative settings TTL should fall back to 300, got %d", cfg.SettingsTTLSeconds)
	}
}
