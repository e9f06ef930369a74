package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/gocrud/inject/di"
)

func buildConfig(t *testing.T, data map[string]any) Configuration {
	t.Helper()
	cfg, err := NewConfigurationBuilder().AddInMemory(data).Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	return cfg
}

func TestGetNestedValue(t *testing.T) {
	cfg := buildConfig(t, map[string]any{
		"app": map[string]any{
			"name": "demo",
			"web": map[string]any{
				"port": 8080,
			},
		},
	})

	if got := cfg.Get("app.name"); got != "demo" {
		t.Errorf("Get(app.name) = %q, want demo", got)
	}

	port, err := cfg.GetInt("app.web.port")
	if err != nil || port != 8080 {
		t.Errorf("GetInt(app.web.port) = %d, %v", port, err)
	}

	if cfg.Has("app.missing") {
		t.Error("Has should report false for missing key")
	}
	if got := cfg.GetWithDefault("app.missing", "fallback"); got != "fallback" {
		t.Errorf("GetWithDefault = %q, want fallback", got)
	}
}

func TestGetBoolConversions(t *testing.T) {
	cfg := buildConfig(t, map[string]any{
		"debug":   true,
		"verbose": "true",
	})

	for _, key := range []string{"debug", "verbose"} {
		v, err := cfg.GetBool(key)
		if err != nil || !v {
			t.Errorf("GetBool(%s) = %v, %v", key, v, err)
		}
	}
}

func TestLaterSourcesOverride(t *testing.T) {
	cfg, err := NewConfigurationBuilder().
		AddInMemory(map[string]any{
			"app": map[string]any{"name": "base", "env": "dev"},
		}).
		AddInMemory(map[string]any{
			"app": map[string]any{"name": "override"},
		}).
		Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	if got := cfg.Get("app.name"); got != "override" {
		t.Errorf("expected later source to win, got %q", got)
	}
	// 深度合并保留未覆盖的兄弟键
	if got := cfg.Get("app.env"); got != "dev" {
		t.Errorf("expected sibling key to survive merge, got %q", got)
	}
}

func TestYamlFileSource(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.yaml")
	content := "web:\n  port: 9090\n  host: localhost\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write temp file: %v", err)
	}

	cfg, err := NewConfigurationBuilder().AddYamlFile(path).Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	port, err := cfg.GetInt("web.port")
	if err != nil || port != 9090 {
		t.Errorf("GetInt(web.port) = %d, %v", port, err)
	}
}

func TestMissingRequiredFileFails(t *testing.T) {
	_, err := NewConfigurationBuilder().AddYamlFile("/nonexistent/app.yaml").Build()
	if err == nil {
		t.Fatal("expected error for missing required file")
	}

	cfg, err := NewConfigurationBuilder().AddYamlFile("/nonexistent/app.yaml", true).Build()
	if err != nil {
		t.Fatalf("optional file should not fail: %v", err)
	}
	if cfg.Has("anything") {
		t.Error("optional missing file should produce empty config")
	}
}

func TestEnvironmentVariableSource(t *testing.T) {
	t.Setenv("TESTAPP__WEB__PORT", "8080")
	t.Setenv("TESTAPP__DEBUG", "true")

	cfg, err := NewConfigurationBuilder().AddEnvironmentVariables("TESTAPP").Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	port, err := cfg.GetInt("web.port")
	if err != nil || port != 8080 {
		t.Errorf("GetInt(web.port) = %d, %v", port, err)
	}
	debug, err := cfg.GetBool("debug")
	if err != nil || !debug {
		t.Errorf("GetBool(debug) = %v, %v", debug, err)
	}
}

func TestBindSection(t *testing.T) {
	type webSettings struct {
		Port int    `yaml:"port"`
		Host string `yaml:"host"`
	}

	cfg := buildConfig(t, map[string]any{
		"web": map[string]any{"port": 3000, "host": "0.0.0.0"},
	})

	settings, err := Bind[webSettings](cfg, "web")
	if err != nil {
		t.Fatalf("Bind failed: %v", err)
	}
	if settings.Port != 3000 || settings.Host != "0.0.0.0" {
		t.Errorf("unexpected settings: %+v", settings)
	}

	if _, err := Bind[webSettings](cfg, "missing"); err == nil {
		t.Error("expected error for missing section")
	}
}

func TestExportRegistersLeafKeys(t *testing.T) {
	cfg := buildConfig(t, map[string]any{
		"app": map[string]any{
			"name": "demo",
			"web":  map[string]any{"port": 8080},
		},
	})

	registry := di.NewRegistry()
	if err := Export(cfg, registry); err != nil {
		t.Fatalf("Export failed: %v", err)
	}

	got, err := registry.Resolve("config")
	if err != nil {
		t.Fatalf("Resolve(config) failed: %v", err)
	}
	if _, ok := got.(Configuration); !ok {
		t.Fatalf("config entry has wrong type %T", got)
	}

	name, err := di.Resolve[string](registry, "config:app.name")
	if err != nil || name != "demo" {
		t.Errorf("Resolve(config:app.name) = %q, %v", name, err)
	}
	port, err := di.Resolve[int](registry, "config:app.web.port")
	if err != nil || port != 8080 {
		t.Errorf("Resolve(config:app.web.port) = %d, %v", port, err)
	}
}
