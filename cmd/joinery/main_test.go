package main

import (
	"bytes"
	"strings"
	"testing"
)

func executeCommand(t *testing.T, args ...string) string {
	t.Helper()

	buf := &bytes.Buffer{}
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("command %v failed: %v\nOutput: %s", args, err, buf.String())
	}
	return buf.String()
}

func TestRootRegistersCommands(t *testing.T) {
	names := make(map[string]bool)
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}

	for _, want := range []string{"version", "serve", "schema", "seed"} {
		if !names[want] {
			t.Errorf("missing %s command", want)
		}
	}
}

func TestVersionCommand(t *testing.T) {
	output := executeCommand(t, "version")

	expected := []string{
		"Joinery version:",
		"Git commit:",
		"Build date:",
		"Go version:",
	}
	for _, exp := range expected {
		if !strings.Contains(output, exp) {
			t.Errorf("version output missing %q\nGot:\n%s", exp, output)
		}
	}
}

func TestSchemaPrintCommand(t *testing.T) {
	output := executeCommand(t, "schema", "print")

	expected := []string{
		`CREATE TABLE IF NOT EXISTS "users"`,
		`CREATE TABLE IF NOT EXISTS "categories"`,
		`CREATE TABLE IF NOT EXISTS "products"`,
		`FOREIGN KEY ("category_id") REFERENCES "categories"`,
		`CREATE OR REPLACE VIEW "product_listings"`,
	}
	for _, exp := range expected {
		if !strings.Contains(output, exp) {
			t.Errorf("schema print missing %q\nGot:\n%s", exp, output)
		}
	}
}

func TestBuildLogger(t *testing.T) {
	log, err := buildLogger("debug")
	if err != nil {
		t.Fatalf("buildLogger(debug) error = %v", err)
	}
	if log == nil {
		t.Fatal("expected a logger")
	}

	if _, err := buildLogger("loud"); err == nil {
		t.Error("expected error for unknown level")
	}
}
