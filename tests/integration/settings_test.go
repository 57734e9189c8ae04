//go:build integration

package integration

import (
	"net/http"
	"testing"
)

func TestSettingsRoundTrip(t *testing.T) {
	resp := doWithAuth(t, http.MethodGet, "/api/admin/settings", nil)
	current := decodeJSON[settingsResponse](t, resp)
	resp.Body.Close()

	update := map[string]any{
		"version":          current.Version,
		"usd_to_bdt_rate":  "123.5",
		"contact_phone":    "+8801911111111",
		"contact_whatsapp": "+8801911111111",
		"contact_email":    "hello@submonth.com",
	}

	resp = doWithAuth(t, http.MethodPut, "/api/admin/settings", update)
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("got status %d, want %d", resp.StatusCode, http.StatusOK)
	}

	updated := decodeJSON[settingsResponse](t, resp)
	if updated.Version != current.Version+1 {
		t.Errorf("got version %d, want %d", updated.Version, current.Version+1)
	}
	if updated.USDToBDTRate != "123.5" {
		t.Errorf("got rate %q, want %q", updated.USDToBDTRate, "123.5")
	}

	// Replaying the same update with the stale version must conflict.
	staleResp := doWithAuth(t, http.MethodPut, "/api/admin/settings", update)
	defer staleResp.Body.Close()

	if staleResp.StatusCode != http.StatusConflict {
		t.Fatalf("stale update: got status %d, want %d", staleResp.StatusCode, http.StatusConflict)
	}
}

func TestSettingsRequireAPIKey(t *testing.T) {
	resp := doGet(t, "/api/admin/settings")
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("got status %d, want %d", resp.StatusCode, http.StatusUnauthorized)
	}
}
