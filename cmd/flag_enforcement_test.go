package cmd

import (
	"testing"

	"github.com/spf13/viper"
)

func setRequiredKeys() {
	viper.Set("anthropic_api_key", "anthropic-key")
	viper.Set("lastfm_api_key", "lastfm-key")
	viper.Set("lastfm_secret", "lastfm-secret")
}

func TestServeRequiresKeys(t *testing.T) {
	// Reset viper
	viper.Reset()

	err := serveCmd.PreRunE(serveCmd, []string{})
	want := `required flag(s) "anthropic_api_key", "lastfm_api_key", "lastfm_secret" not set`
	if err == nil {
		t.Error("Expected error when keys are missing, got nil")
	} else if err.Error() != want {
		t.Errorf("Expected %q, got %v", want, err)
	}

	setRequiredKeys()
	if err := serveCmd.PreRunE(serveCmd, []string{}); err != nil {
		t.Errorf("Expected nil when keys are set, got %v", err)
	}
}

func TestAnalyzeRequiresSpotifyCredentials(t *testing.T) {
	// Reset viper
	viper.Reset()
	setRequiredKeys()
	viper.Set("format", "table")

	err := analyzeCmd.PreRunE(analyzeCmd, []string{"Phoebe Bridgers"})
	want := `required flag(s) "spotify_client_id", "spotify_client_secret" not set`
	if err == nil {
		t.Error("Expected error when spotify credentials are missing, got nil")
	} else if err.Error() != want {
		t.Errorf("Expected %q, got %v", want, err)
	}

	viper.Set("spotify_client_id", "id")
	viper.Set("spotify_client_secret", "secret")
	if err := analyzeCmd.PreRunE(analyzeCmd, []string{"Phoebe Bridgers"}); err != nil {
		t.Errorf("Expected nil when credentials are set, got %v", err)
	}
}

func TestAnalyzeRejectsUnknownFormat(t *testing.T) {
	viper.Reset()
	setRequiredKeys()
	viper.Set("spotify_client_id", "id")
	viper.Set("spotify_client_secret", "secret")
	viper.Set("format", "xml")

	if err := analyzeCmd.PreRunE(analyzeCmd, []string{"Phoebe Bridgers"}); err == nil {
		t.Error("Expected error for --format xml, got nil")
	}
}

func TestAnalyzeEmailRequiresFrom(t *testing.T) {
	viper.Reset()
	setRequiredKeys()
	viper.Set("spotify_client_id", "id")
	viper.Set("spotify_client_secret", "secret")
	viper.Set("format", "json")
	viper.Set("email", "someone@example.com")

	err := analyzeCmd.PreRunE(analyzeCmd, []string{"Phoebe Bridgers"})
	if err == nil {
		t.Error("Expected error when from is missing, got nil")
	} else if err.Error() != `required flag(s) "from" not set` {
		t.Errorf("Expected 'required flag(s) \"from\" not set', got %v", err)
	}

	viper.Set("from", "beetseer@example.com")
	if err := analyzeCmd.PreRunE(analyzeCmd, []string{"Phoebe Bridgers"}); err != nil {
		t.Errorf("Expected nil when from is set, got %v", err)
	}
}

func TestLoadAppConfigPolicy(t *testing.T) {
	viper.Reset()
	setRequiredKeys()
	viper.Set("eligibility.allowed_countries", []string{" us", "gb ", ""})
	viper.Set("eligibility.denied_countries", []string{"ru"})
	viper.Set("eligibility.trust_origin_override", false)

	config, err := loadAppConfig()
	if err != nil {
		t.Fatalf("loadAppConfig() error: %v", err)
	}
	if len(config.Policy.Allowed) != 2 || config.Policy.Allowed[0] != "US" || config.Policy.Allowed[1] != "GB" {
		t.Errorf("Allowed = %q, want [US GB]", config.Policy.Allowed)
	}
	if len(config.Policy.Denied) != 1 || config.Policy.Denied[0] != "RU" {
		t.Errorf("Denied = %q, want [RU]", config.Policy.Denied)
	}
	if config.Policy.TrustOriginOverride {
		t.Errorf("TrustOriginOverride = true, want false")
	}
}

func TestNewLogger(t *testing.T) {
	if _, err := newLogger("debug"); err != nil {
		t.Errorf("newLogger(debug) error: %v", err)
	}
	if _, err := newLogger(""); err != nil {
		t.Errorf("newLogger(\"\") error: %v", err)
	}
	if _, err := newLogger("chatty"); err == nil {
		t.Error("newLogger(chatty): expected error, got nil")
	}
}
