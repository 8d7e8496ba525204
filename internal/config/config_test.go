package config

import (
	"reflect"
	"testing"
)

func testConfig() *Config {
	return &Config{
		MainService: "listenbrainz",
		PageSize:    50,
		Services: map[string]ServiceConfig{
			"lastfm":       {Enabled: true, Username: "lfm-user", SessionKey: "sk"},
			"listenbrainz": {Enabled: true, Username: "lb-user", Token: "token"},
			"librefm":      {Enabled: false, Username: "libre-user"},
		},
	}
}

func TestSnapshot(t *testing.T) {
	cfg := testConfig()

	creds := cfg.Snapshot()
	if len(creds) != 3 {
		t.Fatalf("expected 3 credentials, got %d", len(creds))
	}

	// Sorted by service name for deterministic refresh passes
	var names []string
	for _, cred := range creds {
		names = append(names, cred.Service)
	}
	want := []string{"lastfm", "librefm", "listenbrainz"}
	if !reflect.DeepEqual(names, want) {
		t.Errorf("expected sorted services %v, got %v", want, names)
	}

	for _, cred := range creds {
		if cred.IsPreferred != (cred.Service == "listenbrainz") {
			t.Errorf("unexpected preferred flag for %s: %v", cred.Service, cred.IsPreferred)
		}
	}
}

func TestPreferred(t *testing.T) {
	cfg := testConfig()

	cred, ok := cfg.Preferred()
	if !ok {
		t.Fatal("expected a preferred credential")
	}
	if cred.Service != "listenbrainz" || cred.Token != "token" {
		t.Errorf("unexpected preferred credential: %+v", cred)
	}

	t.Run("no main service", func(t *testing.T) {
		cfg := testConfig()
		cfg.MainService = ""
		if _, ok := cfg.Preferred(); ok {
			t.Error("expected no preferred credential without a main service")
		}
	})

	t.Run("disabled main service", func(t *testing.T) {
		cfg := testConfig()
		cfg.MainService = "librefm"
		if _, ok := cfg.Preferred(); ok {
			t.Error("expected no preferred credential when the main service is disabled")
		}
	})
}

func TestEnabledServices(t *testing.T) {
	cfg := testConfig()

	got := cfg.EnabledServices()
	want := []string{"lastfm", "listenbrainz"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}
