package plugins

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"
)

// LoadUnitDir discovers YAML and Go unit manifests under dir and converts
// them into units sorted by tenant. Two files declaring the same tenant is an
// error.
func LoadUnitDir(dir string) ([]*Unit, error) {
	files, err := loadAllManifestFiles(dir)
	if err != nil {
		return nil, err
	}
	seen := make(map[string]string, len(files))
	units := make([]*Unit, 0, len(files))
	for _, file := range files {
		tenant := file.Manifest.Tenant
		if existing, ok := seen[tenant]; ok {
			return nil, fmt.Errorf("plugin: duplicate tenant %s (%s and %s)", tenant, existing, file.Path)
		}
		seen[tenant] = file.Path
		u, err := file.Unit()
		if err != nil {
			return nil, fmt.Errorf("plugin: %s: %w", file.Path, err)
		}
		units = append(units, u)
	}
	sort.Slice(units, func(i, j int) bool { return units[i].Name() < units[j].Name() })
	return units, nil
}

// LoadUnitFile loads one manifest, choosing the loader by extension.
func LoadUnitFile(path string) (*Unit, error) {
	var (
		file ManifestFile
		err  error
	)
	switch {
	case isYAMLFile(path):
		file, err = LoadManifestFile(path)
	case strings.EqualFold(filepath.Ext(path), ".go"):
		file, err = LoadGoManifestFile(path)
	default:
		return nil, fmt.Errorf("plugin: %s: unsupported manifest type", path)
	}
	if err != nil {
		return nil, err
	}
	return file.Unit()
}

// IsManifestFile reports whether path has an extension LoadUnitFile accepts.
func IsManifestFile(path string) bool {
	return isYAMLFile(path) || strings.EqualFold(filepath.Ext(path), ".go")
}

func loadAllManifestFiles(dir string) ([]ManifestFile, error) {
	yamlFiles, err := LoadManifestDir(dir)
	if err != nil {
		return nil, err
	}
	goFiles, err := LoadGoManifestDir(dir)
	if err != nil {
		return nil, err
	}
	return append(yamlFiles, goFiles...), nil
}
