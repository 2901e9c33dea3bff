package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadFileMissingReturnsDefaults(t *testing.T) {
	cfg, err := LoadFile(filepath.Join(t.TempDir(), "nope.toml"))
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if cfg != DefaultConfig() {
		t.Fatalf("cfg = %+v, want defaults", cfg)
	}
}

func TestLoadFilePartialKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	data := "[general]\nstore = \"sqlite\"\n\n[display]\ncurrency = \"eur\"\n"
	if err := os.WriteFile(path, []byte(data), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if cfg.General.Store != StoreSQLite {
		t.Fatalf("Store = %q, want sqlite", cfg.General.Store)
	}
	if cfg.General.RecordKey != "investment-portfolio-data" {
		t.Fatalf("RecordKey = %q, want default", cfg.General.RecordKey)
	}
	if cfg.Display.Theme != "flexoki-dark" {
		t.Fatalf("Theme = %q, want default", cfg.Display.Theme)
	}
}

func TestLoadFileRejectsBadValues(t *testing.T) {
	tests := map[string]string{
		"store":    "[general]\nstore = \"redis\"\n",
		"key":      "[general]\nrecord_key = \"  \"\n",
		"currency": "[display]\ncurrency = \"DOGE\"\n",
		"syntax":   "[general\n",
	}
	for name, data := range tests {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.toml")
			if err := os.WriteFile(path, []byte(data), 0o600); err != nil {
				t.Fatal(err)
			}
			if _, err := LoadFile(path); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestSaveFileRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "config.toml")
	cfg := DefaultConfig()
	cfg.Display.Theme = "catppuccin-mocha"
	cfg.Server.Addr = ":9000"

	if err := SaveFile(path, cfg); err != nil {
		t.Fatalf("SaveFile: %v", err)
	}
	got, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if got != cfg {
		t.Fatalf("got %+v, want %+v", got, cfg)
	}
}

func TestDataDirPrecedence(t *testing.T) {
	cfg := DefaultConfig()
	cfg.General.DataDir = "/from/config"

	t.Setenv("ALLOT_DATA_DIR", "/from/env")
	if got := DataDir(cfg); got != "/from/env" {
		t.Fatalf("DataDir = %q, want env", got)
	}

	t.Setenv("ALLOT_DATA_DIR", "")
	if got := DataDir(cfg); got != "/from/config" {
		t.Fatalf("DataDir = %q, want config", got)
	}

	cfg.General.DataDir = ""
	t.Setenv("XDG_DATA_HOME", "/xdg")
	if got := DataDir(cfg); got != filepath.Join("/xdg", "allot") {
		t.Fatalf("DataDir = %q, want xdg", got)
	}
}
