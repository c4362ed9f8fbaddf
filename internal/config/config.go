// Copyright (c) 2025 ToeiRei
// Deploymaster - workspace deployment engine
// This source code is licensed under the MIT license found in the LICENSE file.

// Package config loads and persists the deploymaster configuration.
// Settings come from deploymaster.yaml (user or system location, or the
// current directory), environment variables with the DEPLOYMASTER_ prefix,
// and CLI flags, in increasing order of precedence.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/toeirei/deploymaster/internal/model"
)

// Config is the root configuration record.
type Config struct {
	Language  string          `mapstructure:"language" yaml:"language,omitempty"`
	Debug     bool            `mapstructure:"debug" yaml:"debug,omitempty"`
	Workspace string          `mapstructure:"workspace" yaml:"workspace,omitempty"`
	AuditLog  string          `mapstructure:"audit_log" yaml:"audit_log,omitempty"`
	Targets   []model.Target  `mapstructure:"targets" yaml:"targets,omitempty"`
	Packages  []model.Package `mapstructure:"packages" yaml:"packages,omitempty"`
}

// FindTarget returns the target with the given name, or nil.
func (c *Config) FindTarget(name string) *model.Target {
	for i := range c.Targets {
		if c.Targets[i].Name == name {
			return &c.Targets[i]
		}
	}
	return nil
}

// FindPackage returns the package with the given name, or nil.
func (c *Config) FindPackage(name string) *model.Package {
	for i := range c.Packages {
		if c.Packages[i].Name == name {
			return &c.Packages[i]
		}
	}
	return nil
}

// Validate checks the structural invariants of the configuration: names
// must be present and unique, and every target needs a transport type.
func (c *Config) Validate() error {
	targetNames := map[string]bool{}
	for i := range c.Targets {
		t := &c.Targets[i]
		if t.Name == "" {
			return fmt.Errorf("target #%d has no name", i+1)
		}
		if targetNames[t.Name] {
			return fmt.Errorf("duplicate target name %q", t.Name)
		}
		targetNames[t.Name] = true
		if t.Type == "" {
			return fmt.Errorf("target %q has no type", t.Name)
		}
	}

	pkgNames := map[string]bool{}
	for i := range c.Packages {
		p := &c.Packages[i]
		if p.Name == "" {
			return fmt.Errorf("package #%d has no name", i+1)
		}
		if pkgNames[p.Name] {
			return fmt.Errorf("duplicate package name %q", p.Name)
		}
		pkgNames[p.Name] = true
		if len(p.Files) == 0 {
			return fmt.Errorf("package %q has no file patterns", p.Name)
		}
	}
	return nil
}

// getConfigPath returns the full path for the configuration file.
func getConfigPath(system bool) (string, error) {
	var configDir string
	var err error

	if system {
		switch runtime.GOOS {
		case "windows":
			configDir = filepath.Join(os.Getenv("ProgramData"), "Deploymaster")
		default: // Linux, macOS, etc.
			configDir = "/etc/deploymaster"
		}
	} else {
		configDir, err = os.UserConfigDir()
		if err != nil {
			return "", fmt.Errorf("could not get user config directory: %w", err)
		}
		configDir = filepath.Join(configDir, "deploymaster")
	}

	return filepath.Join(configDir, "deploymaster.yaml"), nil
}

func LoadConfig[T any](cmd *cobra.Command, defaults map[string]any, additionalConfigFilePath *string) (T, error) {
	var c T
	v := viper.New()

	// 1. Set defaults
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	// 2. Set up file search paths
	v.SetConfigName("deploymaster")
	v.SetConfigType("yaml")

	// 3. Add explicit config file path if provided via --config flag.
	// This has the highest precedence for file-based configuration.
	if additionalConfigFilePath != nil && *additionalConfigFilePath != "" {
		v.SetConfigFile(*additionalConfigFilePath)
	}

	// 4. Add standard config locations
	if userConfigPath, err := getConfigPath(false); err == nil {
		v.AddConfigPath(filepath.Dir(userConfigPath))
	}
	if systemConfigPath, err := getConfigPath(true); err == nil {
		v.AddConfigPath(filepath.Dir(systemConfigPath))
	}
	v.AddConfigPath(".") // Look for deploymaster.yaml in current dir

	// 5. Read in the primary config file.
	if err := v.ReadInConfig(); err != nil {
		// It's okay if the file is not found, but other errors are fatal.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return c, err
		}
	}

	// 6. Read from environment variables
	v.AutomaticEnv()
	v.AllowEmptyEnv(true)
	v.SetEnvPrefix("deploymaster")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// 7. CLI flags win over everything else
	if err := v.BindPFlags(cmd.Flags()); err != nil {
		return c, err
	}

	if err := v.Unmarshal(&c); err != nil {
		return c, err
	}

	return c, nil
}

func WriteConfigFile[T any](c *T, system bool) error {
	path, err := getConfigPath(system)
	if err != nil {
		return err
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}

	// Create directory if it doesn't exist
	configDir := filepath.Dir(path)
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("could not create config directory %s: %w", configDir, err)
	}

	err = os.WriteFile(path, data, 0600) // Use 0600 for security, as it may contain secrets
	if err != nil {
		return err
	}

	return nil
}
