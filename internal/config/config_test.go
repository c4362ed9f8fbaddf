// Copyright (c) 2025 ToeiRei
// Deploymaster - workspace deployment engine
// This source code is licensed under the MIT license found in the LICENSE file.

package config

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/spf13/cobra"
	"github.com/toeirei/deploymaster/internal/model"
)

const sampleConfig = `
language: en
workspace: /srv/site
audit_log: /var/log/deploymaster.log
targets:
  - name: staging
    type: sftp
    host: staging.example.com
    user: deploy
    dir: /var/www
    sortOrder: 1
    mappings:
      - source: src/web
        target: htdocs
  - name: mirror
    type: local
    dir: /mnt/mirror
    sortOrder: 2
packages:
  - name: web
    files:
      - "src/web/**"
    exclude:
      - "**/*.map"
`

func writeSampleConfig(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "deploymaster.yaml")
	if err := os.WriteFile(path, []byte(sampleConfig), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadConfigFromExplicitFile(t *testing.T) {
	path := writeSampleConfig(t)
	cmd := &cobra.Command{Use: "test"}

	c, err := LoadConfig[Config](cmd, nil, &path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if c.Workspace != "/srv/site" {
		t.Errorf("workspace = %q", c.Workspace)
	}
	if len(c.Targets) != 2 || len(c.Packages) != 1 {
		t.Fatalf("got %d targets, %d packages", len(c.Targets), len(c.Packages))
	}

	staging := c.FindTarget("staging")
	if staging == nil {
		t.Fatal("staging target not found")
	}
	if staging.Type != "sftp" || staging.Host != "staging.example.com" {
		t.Errorf("unexpected staging target: %+v", staging)
	}
	if len(staging.Mappings) != 1 || staging.Mappings[0].Source != "src/web" {
		t.Errorf("unexpected mappings: %+v", staging.Mappings)
	}
	if pkg := c.FindPackage("web"); pkg == nil || len(pkg.Exclude) != 1 {
		t.Errorf("unexpected web package: %+v", pkg)
	}
	if c.FindTarget("nope") != nil || c.FindPackage("nope") != nil {
		t.Error("lookups for unknown names must return nil")
	}
}

func TestLoadConfigFlagOverridesFile(t *testing.T) {
	path := writeSampleConfig(t)
	cmd := &cobra.Command{Use: "test"}
	cmd.Flags().String("workspace", "", "")
	if err := cmd.Flags().Set("workspace", "/override"); err != nil {
		t.Fatal(err)
	}

	c, err := LoadConfig[Config](cmd, nil, &path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if c.Workspace != "/override" {
		t.Errorf("flag must win over file, got %q", c.Workspace)
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	cmd := &cobra.Command{Use: "test"}
	empty := filepath.Join(t.TempDir(), "deploymaster.yaml")
	if err := os.WriteFile(empty, []byte("{}\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	c, err := LoadConfig[Config](cmd, map[string]any{"language": "en"}, &empty)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if c.Language != "en" {
		t.Errorf("default language not applied, got %q", c.Language)
	}
}

func TestWriteConfigFileRoundTrip(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("XDG_CONFIG_HOME redirection is unix-only")
	}
	confHome := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", confHome)

	c := Config{
		Language:  "de",
		Workspace: "/srv/site",
		Targets:   []model.Target{{Name: "out", Type: "local", Dir: "/tmp/out"}},
	}
	if err := WriteConfigFile(&c, false); err != nil {
		t.Fatalf("WriteConfigFile: %v", err)
	}

	path := filepath.Join(confHome, "deploymaster", "deploymaster.yaml")
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("config file not written: %v", err)
	}
	if info.Mode().Perm() != 0o600 {
		t.Errorf("config file mode = %v, want 0600", info.Mode().Perm())
	}

	cmd := &cobra.Command{Use: "test"}
	loaded, err := LoadConfig[Config](cmd, nil, &path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if loaded.Language != "de" || loaded.Workspace != "/srv/site" {
		t.Errorf("round trip lost fields: %+v", loaded)
	}
	if len(loaded.Targets) != 1 || loaded.Targets[0].Name != "out" {
		t.Errorf("round trip lost targets: %+v", loaded.Targets)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr bool
	}{
		{
			name: "valid",
			config: Config{
				Targets:  []model.Target{{Name: "a", Type: "local"}},
				Packages: []model.Package{{Name: "p", Files: []string{"**"}}},
			},
		},
		{
			name:    "unnamed target",
			config:  Config{Targets: []model.Target{{Type: "local"}}},
			wantErr: true,
		},
		{
			name: "duplicate target name",
			config: Config{Targets: []model.Target{
				{Name: "a", Type: "local"},
				{Name: "a", Type: "sftp"},
			}},
			wantErr: true,
		},
		{
			name:    "target without type",
			config:  Config{Targets: []model.Target{{Name: "a"}}},
			wantErr: true,
		},
		{
			name: "duplicate package name",
			config: Config{Packages: []model.Package{
				{Name: "p", Files: []string{"**"}},
				{Name: "p", Files: []string{"*.go"}},
			}},
			wantErr: true,
		},
		{
			name:    "package without patterns",
			config:  Config{Packages: []model.Package{{Name: "p"}}},
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
