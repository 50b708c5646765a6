package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

type sample struct {
	Name  string `yaml:"name"`
	Port  int    `yaml:"port"`
	valid bool
}

func (s *sample) Validate() error {
	s.valid = true
	if s.Port <= 0 {
		return errors.New("port must be positive")
	}
	return nil
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return p
}

func TestLoadExpandsEnvAndKeepsDefaults(t *testing.T) {
	t.Setenv("SAMPLE_NAME", "knight")
	p := writeConfig(t, "name: ${SAMPLE_NAME}\n")

	s := sample{Port: 8000}
	if err := Load(p, &s); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if s.Name != "knight" || s.Port != 8000 {
		t.Errorf("got %+v", s)
	}
	if !s.valid {
		t.Error("Validate not called")
	}
}

func TestLoadMissingFile(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "nope.yaml")

	s := sample{Port: 1}
	if err := Load(missing, &s); err == nil {
		t.Fatal("missing file should fail without Optional")
	}

	s = sample{Port: 1}
	if err := Load(missing, &s, Optional()); err != nil {
		t.Fatalf("Optional load: %v", err)
	}
	if !s.valid {
		t.Error("defaults not validated when file is missing")
	}

	s = sample{}
	if err := Load(missing, &s, Optional()); err == nil || !strings.Contains(err.Error(), "validation") {
		t.Errorf("invalid defaults error = %v", err)
	}
}

func TestLoadInvalidYAML(t *testing.T) {
	p := writeConfig(t, "name: [unclosed\n")
	s := sample{Port: 1}
	err := Load(p, &s)
	if err == nil || !strings.Contains(err.Error(), "failed to parse") {
		t.Errorf("error = %v", err)
	}
}
