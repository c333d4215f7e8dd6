package plugins

import (
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"sort"
	"strings"

	"github.com/traefik/yaegi/interp"
	"github.com/traefik/yaegi/stdlib"
	"gopkg.in/yaml.v3"
)

const goManifestFuncName = "Manifest"

// LoadGoManifestDir evaluates every .go file in dir and collects the unit
// each one declares via Manifest().
func LoadGoManifestDir(dir string) ([]ManifestFile, error) {
	trimmed := strings.TrimSpace(dir)
	if trimmed == "" {
		return nil, nil
	}
	entries, err := os.ReadDir(trimmed)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("plugin: read %s: %w", trimmed, err)
	}
	var files []ManifestFile
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".go" {
			continue
		}
		file, err := LoadGoManifestFile(filepath.Join(trimmed, entry.Name()))
		if err != nil {
			return nil, err
		}
		files = append(files, file)
	}
	sort.Slice(files, func(i, j int) bool { return files[i].Path < files[j].Path })
	return files, nil
}

// LoadGoManifestFile interprets a single Go unit file.
func LoadGoManifestFile(path string) (ManifestFile, error) {
	code, err := os.ReadFile(path)
	if err != nil {
		return ManifestFile{}, fmt.Errorf("plugin: read %s: %w", path, err)
	}
	if len(strings.TrimSpace(string(code))) == 0 {
		return ManifestFile{}, fmt.Errorf("plugin: %s is empty", path)
	}
	i := interp.New(interp.Options{})
	if err := i.Use(stdlib.Symbols); err != nil {
		return ManifestFile{}, fmt.Errorf("plugin: load stdlib symbols: %w", err)
	}
	if _, err := i.EvalPath(path); err != nil {
		return ManifestFile{}, fmt.Errorf("plugin: interpret %s: %w", path, err)
	}
	fnValue, err := i.Eval(goManifestFuncName)
	if err != nil {
		return ManifestFile{}, fmt.Errorf("plugin: %s must define %s() (map[string]any, error): %w", path, goManifestFuncName, err)
	}
	raw, err := invokeManifestFunc(fnValue)
	if err != nil {
		return ManifestFile{}, fmt.Errorf("plugin: %s: %w", path, err)
	}
	payload, err := yaml.Marshal(raw)
	if err != nil {
		return ManifestFile{}, fmt.Errorf("plugin: %s: encode manifest: %w", path, err)
	}
	manifest, err := ParseManifestYAML(payload)
	if err != nil {
		return ManifestFile{}, fmt.Errorf("plugin: %s: %w", path, err)
	}
	return ManifestFile{Manifest: manifest, Path: filepath.Clean(path)}, nil
}

func invokeManifestFunc(value reflect.Value) (map[string]any, error) {
	if !value.IsValid() {
		return nil, fmt.Errorf("missing %s function", goManifestFuncName)
	}
	if value.Kind() != reflect.Func {
		return nil, fmt.Errorf("%s is not a function", goManifestFuncName)
	}
	results := value.Call(nil)
	if len(results) == 0 || len(results) > 2 {
		return nil, fmt.Errorf("%s must return (map[string]any[, error])", goManifestFuncName)
	}
	if len(results) == 2 && !results[1].IsNil() {
		if e, ok := results[1].Interface().(error); ok && e != nil {
			return nil, e
		}
		return nil, fmt.Errorf("%s returned non-error second value", goManifestFuncName)
	}
	raw, ok := results[0].Interface().(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%s must return map[string]any", goManifestFuncName)
	}
	return raw, nil
}
