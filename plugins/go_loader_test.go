package plugins

import (
	"os"
	"path/filepath"
	"testing"
)

const goUnitSource = `package main

func Manifest() (map[string]any, error) {
	return map[string]any{
		"tenant": "ModB",
		"entities": []map[string]any{
			{
				"name":    "Firefly",
				"markers": []map[string]any{{"kind": "critter", "value": 10, "rarity": "blue"}},
			},
		},
	}, nil
}`

func TestLoadGoManifestDir(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "mod-b.go"), []byte(goUnitSource), 0644); err != nil {
		t.Fatalf("write unit: %v", err)
	}
	files, err := LoadGoManifestDir(dir)
	if err != nil {
		t.Fatalf("load go manifests: %v", err)
	}
	if len(files) != 1 {
		t.Fatalf("expected 1 manifest, got %d", len(files))
	}
	if files[0].Manifest.Tenant != "ModB" || files[0].Manifest.Entities[0].Name != "Firefly" {
		t.Fatalf("unexpected manifest: %+v", files[0].Manifest)
	}
}

func TestLoadGoManifestDirMissingFunc(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "broken.go"), []byte("package main\n"), 0644); err != nil {
		t.Fatalf("write broken unit: %v", err)
	}
	if _, err := LoadGoManifestDir(dir); err == nil {
		t.Fatalf("expected error for missing Manifest function")
	}
}

func TestLoadGoManifestFileReturnsError(t *testing.T) {
	dir := t.TempDir()
	src := `package main

import "errors"

func Manifest() (map[string]any, error) {
	return nil, errors.New("not ready")
}`
	path := filepath.Join(dir, "failing.go")
	if err := os.WriteFile(path, []byte(src), 0644); err != nil {
		t.Fatalf("write unit: %v", err)
	}
	if _, err := LoadGoManifestFile(path); err == nil {
		t.Fatalf("expected Manifest error to propagate")
	}
}
