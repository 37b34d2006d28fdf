package dashboard

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestRenderMissingEnv(t *testing.T) {
	os.Unsetenv("GREPTIMEDB_DATASOURCE_UID")
	if err := Render(t.TempDir()); err == nil {
		t.Fatal("expected error for missing datasource uid")
	}
}

func TestRenderSuccess(t *testing.T) {
	t.Setenv("GREPTIMEDB_DATASOURCE_UID", "uid1")

	dir := t.TempDir()
	if err := Render(dir); err != nil {
		t.Fatalf("render failed: %v", err)
	}

	b, err := os.ReadFile(filepath.Join(dir, "grafana-dashboard.json"))
	if err != nil {
		t.Fatalf("read dashboard: %v", err)
	}
	if !strings.Contains(string(b), "uid1") {
		t.Fatal("datasource uid not rendered")
	}
	var doc map[string]any
	if err := json.Unmarshal(b, &doc); err != nil {
		t.Fatalf("rendered dashboard is not valid JSON: %v", err)
	}
	if doc["title"] != "Rescue Mission Overview" {
		t.Fatalf("unexpected title: %v", doc["title"])
	}
}
