package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/cognicore/standoff/pkg/standoff/internalerr"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "standoff.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadEmptyPathReturnsDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.TokenIndex != 0 {
		t.Errorf("TokenIndex = %d, want 0", cfg.TokenIndex)
	}
	if cfg.TagIndices != "-1" {
		t.Errorf("TagIndices = %q, want -1", cfg.TagIndices)
	}
	if len(cfg.Unescape) != 4 {
		t.Errorf("Expected 4 default unescape rules, got %d", len(cfg.Unescape))
	}
	if cfg.Split.Suffix != "conll" || cfg.Split.Directory != "JNLPBA" {
		t.Errorf("Unexpected split defaults: %+v", cfg.Split)
	}
	if cfg.Store.Path != "" {
		t.Errorf("Store should be disabled by default, got %q", cfg.Store.Path)
	}
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `token_index: 1
tag_indices: "4,5"
split:
  suffix: iob2
batch:
  ann_suffix: a1
store:
  path: /tmp/standoff.db
id:
  reset_per_document: true
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.TokenIndex != 1 {
		t.Errorf("TokenIndex = %d, want 1", cfg.TokenIndex)
	}
	if cfg.TagIndices != "4,5" {
		t.Errorf("TagIndices = %q", cfg.TagIndices)
	}
	if cfg.Split.Suffix != "iob2" {
		t.Errorf("Split.Suffix = %q", cfg.Split.Suffix)
	}
	// untouched keys keep their defaults
	if cfg.Split.Directory != "JNLPBA" {
		t.Errorf("Split.Directory = %q", cfg.Split.Directory)
	}
	if cfg.Batch.AnnSuffix != "a1" || cfg.Batch.TextSuffix != "txt" {
		t.Errorf("Unexpected batch config: %+v", cfg.Batch)
	}
	if cfg.Store.Path != "/tmp/standoff.db" {
		t.Errorf("Store.Path = %q", cfg.Store.Path)
	}
	if !cfg.ID.ResetPerDocument {
		t.Error("ResetPerDocument should be true")
	}
	if len(cfg.Unescape) != 4 {
		t.Errorf("Default unescape rules should survive, got %d", len(cfg.Unescape))
	}
}

func TestLoadUnescapeReplacesTable(t *testing.T) {
	path := writeConfig(t, `unescape:
  - from: "-LRB-"
    to: "("
  - from: "."
    to: ":"
    suffix: true
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	rules := cfg.Rules()
	if len(rules) != 2 {
		t.Fatalf("Expected 2 rules, got %d", len(rules))
	}
	if rules[0].From != "-LRB-" || rules[0].To != "(" || rules[0].Suffix {
		t.Errorf("Unexpected first rule: %+v", rules[0])
	}
	if !rules[1].Suffix {
		t.Error("Second rule should be suffix-anchored")
	}
}

func TestLoadInvalid(t *testing.T) {
	tests := map[string]string{
		"bad yaml":         "token_index: [",
		"bad indices":      `tag_indices: "a,b"`,
		"empty from":       "unescape:\n  - from: \"\"\n    to: x\n",
		"empty suffix":     "split:\n  suffix: \"\"\n",
		"empty ann suffix": "batch:\n  ann_suffix: \"\"\n",
	}

	for name, content := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Load(writeConfig(t, content))
			if err == nil {
				t.Fatal("Expected error")
			}
			if !errors.Is(err, internalerr.ErrInvalidConfig) {
				t.Errorf("Expected ErrInvalidConfig, got %v", err)
			}
		})
	}
}

func TestLoadNonExistent(t *testing.T) {
	if _, err := Load("/nonexistent/standoff.yaml"); err == nil {
		t.Error("Should error on nonexistent config")
	}
}
