package main

import (
	"os"
	"path/filepath"
	"testing"
)

func writeDivisionsFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "divisions.json")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("failed to write divisions file: %v", err)
	}
	return path
}

func TestReadDivisions(t *testing.T) {
	path := writeDivisionsFile(t, `[
		{"cid": "110", "name": "Центральный корпус"},
		{"cid": "130", "name": "Дневной стационар", "section_cid": "1301"}
	]`)

	divisions, err := readDivisions(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(divisions) != 2 {
		t.Fatalf("expected 2 divisions, got %d", len(divisions))
	}
	if divisions[0].Cid != "110" || divisions[0].Name != "Центральный корпус" {
		t.Errorf("unexpected first division: %+v", divisions[0])
	}
	if divisions[1].SectionCid != "1301" {
		t.Errorf("expected section cid on second division, got %+v", divisions[1])
	}
}

func TestReadDivisions_EmptyOrMissing(t *testing.T) {
	if _, err := readDivisions(writeDivisionsFile(t, `[]`)); err == nil {
		t.Error("expected error for empty division list")
	}
	if _, err := readDivisions(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Error("expected error for missing file")
	}
	if _, err := readDivisions(writeDivisionsFile(t, `not json`)); err == nil {
		t.Error("expected error for malformed file")
	}
}

func TestReadConfig(t *testing.T) {
	t.Setenv("GATEWAY_URL", "https://gateway.example")
	t.Setenv("GATEWAY_API_KEY", "secret")
	t.Setenv("SEARCH_PAY_TYPE_ID", "42")
	t.Setenv("DIVISIONS_FILE", writeDivisionsFile(t, `[{"cid": "110", "name": "Центральный корпус"}]`))

	config, err := readConfig()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if config.GatewayURL != "https://gateway.example" {
		t.Errorf("expected gateway URL from env, got %s", config.GatewayURL)
	}
	if config.RequestTimeout != 30 {
		t.Errorf("expected default timeout 30, got %d", config.RequestTimeout)
	}
	if config.GatewayEndpoint != "/gateway" {
		t.Errorf("expected default endpoint, got %s", config.GatewayEndpoint)
	}
	if len(config.Divisions) != 1 {
		t.Errorf("expected divisions loaded, got %v", config.Divisions)
	}
}

func TestReadConfig_MissingRequired(t *testing.T) {
	t.Setenv("GATEWAY_URL", "")
	os.Unsetenv("GATEWAY_URL")

	if _, err := readConfig(); err == nil {
		t.Error("expected error when GATEWAY_URL is missing")
	}
}
