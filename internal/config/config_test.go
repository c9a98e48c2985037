package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestConfig_GetTestPath(t *testing.T) {
	tests := []struct {
		name     string
		config   *Config
		expected string
	}{
		{
			name: "default path",
			config: &Config{
				ProjectPath: "/project",
				TestPath:    "test",
			},
			expected: "/project/test",
		},
		{
			name: "with test path flag",
			config: &Config{
				ProjectPath: "/project",
				TestPath:    "test",
				Flags: Flags{
					TestPath: "spec",
				},
			},
			expected: "/project/spec",
		},
		{
			name: "absolute test path",
			config: &Config{
				ProjectPath: "/project",
				TestPath:    "test",
				Flags: Flags{
					TestPath: "/absolute/path",
				},
			},
			expected: "/absolute/path",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := tt.config.GetTestPath()
			if result != tt.expected {
				t.Errorf("expected %s, got %s", tt.expected, result)
			}
		})
	}
}

func TestConfig_GetDatabaseName(t *testing.T) {
	env := map[string]string{"DB_DATABASE": "app_test"}
	lookup := func(k string) string { return env[k] }

	cfg := New()
	if got := cfg.GetDatabaseName(lookup); got != "app_test" {
		t.Errorf("expected app_test, got %s", got)
	}

	cfg.Database.Name = "explicit"
	if got := cfg.GetDatabaseName(lookup); got != "explicit" {
		t.Errorf("expected explicit, got %s", got)
	}

	if got := New().GetDatabaseName(func(string) string { return "" }); got != DefaultDatabaseName {
		t.Errorf("expected %s, got %s", DefaultDatabaseName, got)
	}
}

func TestFindProjectRoot(t *testing.T) {
	root := t.TempDir()
	nested := filepath.Join(root, "a", "b", "c")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(root, FileName), []byte("test_path: spec\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	got, ok := FindProjectRoot(nested)
	if !ok || got != root {
		t.Fatalf("expected %s, got %s (found=%v)", root, got, ok)
	}

	if _, ok := FindProjectRoot(t.TempDir()); ok {
		t.Error("expected no project root in an empty directory")
	}
}

func TestDiscover(t *testing.T) {
	root := t.TempDir()
	content := `test_path: spec
helper: helper.yml
preload:
  - lib/fixtures.yml
reload:
  - ^lib/
watch: true
`
	if err := os.WriteFile(filepath.Join(root, FileName), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	sub := filepath.Join(root, "spec")
	if err := os.MkdirAll(sub, 0o755); err != nil {
		t.Fatal(err)
	}

	cfg, err := Discover(sub)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.ProjectPath != root {
		t.Errorf("expected project path %s, got %s", root, cfg.ProjectPath)
	}
	if cfg.HelperPath() != filepath.Join(root, "spec", "helper.yml") {
		t.Errorf("unexpected helper path %s", cfg.HelperPath())
	}
	if got := cfg.PreloadPaths(); len(got) != 1 || got[0] != filepath.Join(root, "lib", "fixtures.yml") {
		t.Errorf("unexpected preload paths %v", got)
	}
	if !cfg.Watch {
		t.Error("expected watch to be enabled")
	}
	if len(cfg.BaseCategories) != len(DefaultBaseCategories) {
		t.Errorf("expected default base categories, got %v", cfg.BaseCategories)
	}

	patterns, err := cfg.ReloadPatterns()
	if err != nil || len(patterns) != 1 || !patterns[0].MatchString("lib/fixtures.yml") {
		t.Errorf("unexpected reload patterns %v (err=%v)", patterns, err)
	}
}

func TestLoad_InvalidReloadPattern(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	if err := os.WriteFile(path, []byte("reload:\n  - \"([\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("expected error for invalid reload pattern")
	}
}

func TestConfig_SocketPath(t *testing.T) {
	t.Run("under project root", func(t *testing.T) {
		t.Setenv(SocketEnv, "")
		cfg := New()
		cfg.ProjectPath = t.TempDir()

		sock, err := cfg.SocketPath()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if sock != filepath.Join(cfg.ProjectPath, "tmp", "sockets", "test_server.sock") {
			t.Errorf("unexpected socket path %s", sock)
		}
		if info, err := os.Stat(filepath.Dir(sock)); err != nil || !info.IsDir() {
			t.Error("expected socket directory to be created")
		}

		state, err := cfg.StatePath()
		if err != nil || filepath.Dir(state) != filepath.Dir(sock) {
			t.Errorf("unexpected state path %s (err=%v)", state, err)
		}
	})

	t.Run("environment override", func(t *testing.T) {
		t.Setenv(SocketEnv, "/tmp/custom.sock")
		sock, err := New().SocketPath()
		if err != nil || sock != "/tmp/custom.sock" {
			t.Errorf("expected override, got %s (err=%v)", sock, err)
		}
	})
}

func TestConfig_GetLogLevel(t *testing.T) {
	cfg := New()
	if got := cfg.GetLogLevel(); got != DefaultLogLevel {
		t.Errorf("GetLogLevel() = %q, want %q", got, DefaultLogLevel)
	}

	cfg.LogLevel = "warn"
	if got := cfg.GetLogLevel(); got != "warn" {
		t.Errorf("GetLogLevel() = %q, want config value", got)
	}

	cfg.Flags.LogLevel = "debug"
	if got := cfg.GetLogLevel(); got != "debug" {
		t.Errorf("GetLogLevel() = %q, want flag value", got)
	}
}
