package cli

import (
	"flag"
	"os"
	"path/filepath"
	"testing"
)

func TestEnvLoaderLoadsRequestedFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.env")
	if err := os.WriteFile(path, []byte("ECMGRAPH_CLI_TEST_VALUE=loaded\n"), 0o644); err != nil {
		t.Fatalf("write env file: %v", err)
	}
	t.Setenv(EnvFileOverrideVar, "")
	t.Setenv("ECMGRAPH_CLI_TEST_VALUE", "")

	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	loader := AddEnvFlag(fs, ".env", "")
	if err := fs.Parse([]string{"--env", path}); err != nil {
		t.Fatalf("parse flags: %v", err)
	}

	got, err := loader.Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if got != path {
		t.Fatalf("unexpected loaded path: got %q want %q", got, path)
	}
	if v := os.Getenv("ECMGRAPH_CLI_TEST_VALUE"); v != "loaded" {
		t.Fatalf("unexpected env value: %q", v)
	}
}

func TestEnvLoaderMissingFile(t *testing.T) {
	t.Setenv(EnvFileOverrideVar, "")

	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	loader := AddEnvFlag(fs, filepath.Join(t.TempDir(), "missing.env"), "")
	if err := fs.Parse(nil); err != nil {
		t.Fatalf("parse flags: %v", err)
	}
	if _, err := loader.Load(); err == nil {
		t.Fatalf("expected error for missing env file")
	}
}

func TestEnvLoaderNil(t *testing.T) {
	t.Parallel()

	var loader *EnvLoader
	if _, err := loader.Load(); err == nil {
		t.Fatalf("expected error for nil loader")
	}
}
