package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg != Default() {
		t.Errorf("Load = %+v, want defaults %+v", cfg, Default())
	}
}

func TestLoad_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pagebuilder.yaml")
	data := "wrapper_selector: '#canvas'\nfonts:\n  dir: /usr/share/fonts/pb\n"
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.WrapperSelector != "#canvas" {
		t.Errorf("WrapperSelector = %q", cfg.WrapperSelector)
	}
	if cfg.Fonts.Dir != "/usr/share/fonts/pb" {
		t.Errorf("Fonts.Dir = %q", cfg.Fonts.Dir)
	}
	if cfg.ElementClassPrefix != Default().ElementClassPrefix {
		t.Errorf("ElementClassPrefix = %q, want default", cfg.ElementClassPrefix)
	}
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("PAGEBUILDER_ELEMENT_CLASS_PREFIX", "el-")
	t.Setenv("PAGEBUILDER_FONTS_BASE_URL", "https://fonts.example.com/css")

	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.ElementClassPrefix != "el-" {
		t.Errorf("ElementClassPrefix = %q", cfg.ElementClassPrefix)
	}
	if cfg.Fonts.BaseURL != "https://fonts.example.com/css" {
		t.Errorf("Fonts.BaseURL = %q", cfg.Fonts.BaseURL)
	}
}

func TestLoad_Invalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pagebuilder.yaml")
	if err := os.WriteFile(path, []byte("element_class_prefix: 'bad prefix'\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("expected validation error")
	}

	if err := os.WriteFile(path, []byte("wrapper_selector: [unclosed\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("expected parse error")
	}
}

func TestWriteDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "conf", "pagebuilder.yaml")
	if _, err := WriteDefault(path, false); err != nil {
		t.Fatalf("WriteDefault: %v", err)
	}
	if _, err := WriteDefault(path, false); err == nil {
		t.Error("expected error for existing file")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "wrapper_selector:") || !strings.Contains(string(data), "#pagebuilder") {
		t.Errorf("written config:\n%s", data)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg != Default() {
		t.Errorf("round trip = %+v", cfg)
	}
}
