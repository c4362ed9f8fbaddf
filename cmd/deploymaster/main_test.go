// Copyright (c) 2025 ToeiRei
// Deploymaster - workspace deployment engine
// This source code is licensed under the MIT license found in the LICENSE file.

package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// runCLI executes a fresh root command against the given config file and
// returns the combined output.
func runCLI(t *testing.T, configPath string, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append([]string{"--config", configPath}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "deploymaster.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func writeWorkspaceFile(t *testing.T, ws, name, content string) {
	t.Helper()
	full := filepath.Join(ws, name)
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(full, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestTargetsCommand(t *testing.T) {
	config := writeConfig(t, `
targets:
  - name: staging
    type: sftp
    host: staging.example.com
    user: deploy
  - name: mirror
    type: local
    dir: /mnt/mirror
`)

	out, err := runCLI(t, config, "targets")
	if err != nil {
		t.Fatalf("targets command failed: %v\n%s", err, out)
	}
	if !strings.Contains(out, "staging (sftp)") || !strings.Contains(out, "mirror (local)") {
		t.Errorf("target listing incomplete:\n%s", out)
	}
}

func TestPackagesCommand(t *testing.T) {
	config := writeConfig(t, `
packages:
  - name: web
    files:
      - "src/web/**"
      - "index.html"
`)

	out, err := runCLI(t, config, "packages")
	if err != nil {
		t.Fatalf("packages command failed: %v\n%s", err, out)
	}
	if !strings.Contains(out, "web: src/web/**, index.html") {
		t.Errorf("package listing incomplete:\n%s", out)
	}
}

func TestDeployLocalEndToEnd(t *testing.T) {
	ws := t.TempDir()
	writeWorkspaceFile(t, ws, "index.html", "<html>v1</html>")
	writeWorkspaceFile(t, ws, "src/app.js", "console.log(1)")
	writeWorkspaceFile(t, ws, "notes.md", "not deployed")
	dest := filepath.Join(t.TempDir(), "out")

	config := writeConfig(t, fmt.Sprintf(`
workspace: %s
targets:
  - name: out
    type: local
    dir: %s
packages:
  - name: site
    files:
      - "index.html"
      - "src/**"
`, ws, dest))

	out, err := runCLI(t, config, "deploy", "site")
	if err != nil {
		t.Fatalf("deploy failed: %v\n%s", err, out)
	}

	data, err := os.ReadFile(filepath.Join(dest, "index.html"))
	if err != nil || string(data) != "<html>v1</html>" {
		t.Errorf("index.html not deployed: %v %q", err, data)
	}
	if _, err := os.Stat(filepath.Join(dest, "src", "app.js")); err != nil {
		t.Errorf("src/app.js not deployed: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dest, "notes.md")); !os.IsNotExist(err) {
		t.Error("notes.md is outside the package and must not be deployed")
	}
	if !strings.Contains(out, "index.html") {
		t.Errorf("progress output missing deployed file:\n%s", out)
	}
}

func TestDeployUnknownTarget(t *testing.T) {
	ws := t.TempDir()
	writeWorkspaceFile(t, ws, "a.txt", "a")
	config := writeConfig(t, fmt.Sprintf(`
workspace: %s
targets:
  - name: out
    type: local
    dir: %s
packages:
  - name: all
    files: ["**"]
`, ws, t.TempDir()))

	if _, err := runCLI(t, config, "deploy", "--target", "nope"); err == nil {
		t.Error("expected error for unknown target name")
	}
	if _, err := runCLI(t, config, "deploy", "ghost-package"); err == nil {
		t.Error("expected error for unknown package name")
	}
}

func TestDeployNoMatchingFiles(t *testing.T) {
	ws := t.TempDir()
	config := writeConfig(t, fmt.Sprintf(`
workspace: %s
targets:
  - name: out
    type: local
    dir: %s
packages:
  - name: css
    files: ["*.css"]
`, ws, t.TempDir()))

	if _, err := runCLI(t, config, "deploy", "css"); err == nil {
		t.Error("expected error when no files match the requested packages")
	}
}

func TestAuditDetectsDrift(t *testing.T) {
	ws := t.TempDir()
	writeWorkspaceFile(t, ws, "app.txt", "v1")
	dest := filepath.Join(t.TempDir(), "out")

	config := writeConfig(t, fmt.Sprintf(`
workspace: %s
targets:
  - name: out
    type: local
    dir: %s
packages:
  - name: all
    files: ["**"]
`, ws, dest))

	if out, err := runCLI(t, config, "deploy"); err != nil {
		t.Fatalf("deploy failed: %v\n%s", err, out)
	}

	out, err := runCLI(t, config, "audit", "out")
	if err != nil {
		t.Fatalf("clean audit must pass: %v\n%s", err, out)
	}

	if err := os.WriteFile(filepath.Join(dest, "app.txt"), []byte("tampered"), 0o644); err != nil {
		t.Fatal(err)
	}
	out, err = runCLI(t, config, "audit", "out")
	if err == nil {
		t.Errorf("audit must fail on drift:\n%s", out)
	}
	if !strings.Contains(out, "app.txt") {
		t.Errorf("audit output missing drifted file:\n%s", out)
	}
}

func TestInvalidConfigRejected(t *testing.T) {
	config := writeConfig(t, `
targets:
  - name: broken
`)
	if _, err := runCLI(t, config, "targets"); err == nil {
		t.Error("expected validation error for target without type")
	}
}
