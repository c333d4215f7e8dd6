package plugins

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// ManifestFile pairs a parsed unit manifest with its on-disk source.
type ManifestFile struct {
	Manifest UnitManifest
	Path     string
}

// Unit converts the file into a loadable unit tagged with its path.
func (f ManifestFile) Unit() (*Unit, error) {
	return f.Manifest.Unit(f.Path)
}

// ParseManifestYAML decodes and validates a single unit manifest payload.
func ParseManifestYAML(data []byte) (UnitManifest, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return UnitManifest{}, fmt.Errorf("plugin: manifest payload is empty")
	}
	var manifest UnitManifest
	if err := yaml.Unmarshal(data, &manifest); err != nil {
		return UnitManifest{}, fmt.Errorf("plugin: decode manifest: %w", err)
	}
	if err := manifest.Validate(); err != nil {
		return UnitManifest{}, err
	}
	return manifest.Normalized(), nil
}

// LoadManifestFile reads a YAML file from disk and returns the parsed manifest.
func LoadManifestFile(path string) (ManifestFile, error) {
	info, err := os.Stat(path)
	if err != nil {
		return ManifestFile{}, fmt.Errorf("plugin: stat %s: %w", path, err)
	}
	if info.IsDir() {
		return ManifestFile{}, fmt.Errorf("plugin: %s is a directory", path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return ManifestFile{}, fmt.Errorf("plugin: read %s: %w", path, err)
	}
	manifest, err := ParseManifestYAML(data)
	if err != nil {
		return ManifestFile{}, fmt.Errorf("plugin: %s: %w", path, err)
	}
	return ManifestFile{Manifest: manifest, Path: filepath.Clean(path)}, nil
}

// LoadManifestDir scans a directory for *.yaml manifests.
// Missing directories are treated as "no tenants".
func LoadManifestDir(dir string) ([]ManifestFile, error) {
	trimmed := strings.TrimSpace(dir)
	if trimmed == "" {
		return nil, nil
	}
	entries, err := os.ReadDir(trimmed)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("plugin: read %s: %w", trimmed, err)
	}
	var files []ManifestFile
	for _, entry := range entries {
		if entry.IsDir() || !isYAMLFile(entry.Name()) {
			continue
		}
		file, err := LoadManifestFile(filepath.Join(trimmed, entry.Name()))
		if err != nil {
			return nil, err
		}
		files = append(files, file)
	}
	sort.Slice(files, func(i, j int) bool { return files[i].Path < files[j].Path })
	return files, nil
}

func isYAMLFile(name string) bool {
	lower := strings.ToLower(strings.TrimSpace(name))
	return strings.HasSuffix(lower, ".yaml") || strings.HasSuffix(lower, ".yml")
}
