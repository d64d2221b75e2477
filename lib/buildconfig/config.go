// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package buildconfig

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"

	"github.com/bureau-foundation/prtk-pkg/lib/clock"
)

// Environment variable names.
const (
	EnvPackageName      = "PKGNAME"
	EnvVersion          = "VERSION"
	EnvRepoSubdirectory = "MUNKI_REPO_SUBDIR"
	EnvReverseDomain    = "REVERSE_DOMAIN"
	EnvConfigFile       = "PRTK_PKG_CONFIG"
)

// VersionDateLayout formats the default version: YYYY.MM.DD.
const VersionDateLayout = "2006.01.02"

// LookupFunc reads one environment variable. os.LookupEnv satisfies it.
type LookupFunc func(key string) (string, bool)

// Config holds everything a build needs to know before it starts.
type Config struct {
	// PackageName is the package name (PKGNAME).
	PackageName string `yaml:"package_name" json:"package_name"`

	// Version is the package version (VERSION). Defaults to the current
	// date formatted with VersionDateLayout.
	Version string `yaml:"version" json:"version"`

	// RepoSubdirectory is the Munki repository subdirectory
	// (MUNKI_REPO_SUBDIR).
	RepoSubdirectory string `yaml:"repo_subdirectory" json:"repo_subdirectory"`

	// ReverseDomain is the package identifier prefix (REVERSE_DOMAIN).
	ReverseDomain string `yaml:"reverse_domain" json:"reverse_domain"`

	// OutputDirectory is where the .pkg is written.
	// Default: the current working directory.
	OutputDirectory string `yaml:"output_directory" json:"output_directory"`

	// SkipImport stops the build after pkgbuild. MUNKI_REPO_SUBDIR is
	// not required when set.
	SkipImport bool `yaml:"skip_import" json:"skip_import"`

	// Tools configures external tool locations.
	Tools ToolsConfig `yaml:"tools" json:"tools"`

	// ProvFile is the license provisioning file from the command line.
	ProvFile string `yaml:"-" json:"-"`
}

// ToolsConfig configures external tool locations. A bare name is
// resolved through PATH and the tool's standard install directory; a
// path containing a separator is used as-is.
type ToolsConfig struct {
	// Prtk is an explicit adobe_prtk path. When empty the working
	// directory and the Creative Cloud Packager install location are
	// searched.
	Prtk string `yaml:"prtk" json:"prtk"`

	// Pkgbuild is the package building tool.
	// Default: pkgbuild
	Pkgbuild string `yaml:"pkgbuild" json:"pkgbuild"`

	// Munkiimport is the repository import tool.
	// Default: munkiimport
	Munkiimport string `yaml:"munkiimport" json:"munkiimport"`
}

// Default returns the configuration every load starts from.
func Default() *Config {
	return &Config{
		OutputDirectory: ".",
		Tools: ToolsConfig{
			Pkgbuild:    "pkgbuild",
			Munkiimport: "munkiimport",
		},
	}
}

// Load builds the configuration for one run: defaults, then the config
// file (configPath, or PRTK_PKG_CONFIG when configPath is empty), then
// environment variables, then the date default for Version.
func Load(configPath string, lookup LookupFunc, clk clock.Clock) (*Config, error) {
	if configPath == "" {
		configPath, _ = lookup(EnvConfigFile)
	}

	config := Default()
	if configPath != "" {
		loaded, err := LoadFile(configPath)
		if err != nil {
			return nil, err
		}
		config = loaded
	}

	config.ApplyEnvironment(lookup)

	if config.Version == "" {
		config.Version = clk.Now().Format(VersionDateLayout)
	}
	return config, nil
}

// LoadFile reads a config file over the defaults. The format is chosen
// by extension: .json and .jsonc are JSON with comments, anything else
// is YAML.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	config := Default()
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json", ".jsonc":
		if err := json.Unmarshal(jsonc.ToJSON(data), config); err != nil {
			return nil, fmt.Errorf("parsing config file %s: %w", path, err)
		}
	default:
		if err := yaml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("parsing config file %s: %w", path, err)
		}
	}
	return config, nil
}

// ApplyEnvironment overrides file values with any non-empty
// environment variable.
func (c *Config) ApplyEnvironment(lookup LookupFunc) {
	overrides := []struct {
		key    string
		target *string
	}{
		{EnvPackageName, &c.PackageName},
		{EnvVersion, &c.Version},
		{EnvRepoSubdirectory, &c.RepoSubdirectory},
		{EnvReverseDomain, &c.ReverseDomain},
	}
	for _, override := range overrides {
		if value, ok := lookup(override.key); ok && value != "" {
			*override.target = value
		}
	}
}

// MissingError reports a required value that was not provided.
type MissingError struct {
	// Variable is the environment variable that supplies the value.
	Variable string

	// Purpose describes the value for the error message.
	Purpose string
}

func (e *MissingError) Error() string {
	return fmt.Sprintf("%s is not set (%s)", e.Variable, e.Purpose)
}

// Validate checks the configuration for errors. Every problem is
// reported; the returned error is an errors.Join of one error per
// problem.
func (c *Config) Validate() error {
	var errs []error

	if c.PackageName == "" {
		errs = append(errs, &MissingError{Variable: EnvPackageName, Purpose: "package name, e.g. AdobeCC-Serial"})
	} else if err := checkPathComponent("package name", c.PackageName); err != nil {
		errs = append(errs, err)
	}

	if c.RepoSubdirectory == "" && !c.SkipImport {
		errs = append(errs, &MissingError{Variable: EnvRepoSubdirectory, Purpose: "Munki repository subdirectory, e.g. apps/adobe"})
	}

	if c.ReverseDomain == "" {
		errs = append(errs, &MissingError{Variable: EnvReverseDomain, Purpose: "package identifier prefix, e.g. com.example"})
	}

	if c.Version == "" {
		errs = append(errs, &MissingError{Variable: EnvVersion, Purpose: "package version"})
	} else if err := checkPathComponent("version", c.Version); err != nil {
		errs = append(errs, err)
	}

	if c.Tools.Pkgbuild == "" {
		errs = append(errs, fmt.Errorf("tools.pkgbuild is required"))
	}
	if c.Tools.Munkiimport == "" && !c.SkipImport {
		errs = append(errs, fmt.Errorf("tools.munkiimport is required"))
	}

	return errors.Join(errs...)
}

// checkPathComponent rejects values that would escape the output
// directory when used in a file name.
func checkPathComponent(what, value string) error {
	if value == "." || value == ".." || strings.ContainsAny(value, `/\`) || strings.ContainsRune(value, 0) {
		return fmt.Errorf("%s %q cannot be used in a file name", what, value)
	}
	return nil
}

// SetProvFile validates the positional arguments (exactly one, naming
// an existing regular file) and records the path.
func (c *Config) SetProvFile(args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("expected exactly one argument (path to prov.xml), got %d", len(args))
	}

	path := args[0]
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("provisioning file %s does not exist", path)
		}
		return fmt.Errorf("checking provisioning file: %w", err)
	}
	if !info.Mode().IsRegular() {
		return fmt.Errorf("provisioning file %s is not a regular file", path)
	}

	absolute, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("resolving provisioning file path: %w", err)
	}
	c.ProvFile = absolute
	return nil
}

// PackageIdentifier returns REVERSE_DOMAIN.PKGNAME. This is both the
// installer package identifier and the receipt name the uninstall
// script forgets.
func (c *Config) PackageIdentifier() string {
	return c.ReverseDomain + "." + c.PackageName
}

// PackageFileName returns PKGNAME-VERSION.pkg.
func (c *Config) PackageFileName() string {
	return c.PackageName + "-" + c.Version + ".pkg"
}

// PackagePath returns the full output path of the package.
func (c *Config) PackagePath() string {
	return filepath.Join(c.OutputDirectory, c.PackageFileName())
}
