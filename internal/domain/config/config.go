// Package config loads and validates the installer configuration.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	toml "github.com/pelletier/go-toml/v2"
)

// Config describes everything the pipeline needs to know about the target
// environment: which OS features to enable, which runtime packages to fetch,
// which distribution to register, and what to provision inside the guest.
type Config struct {
	// Distro is the distribution registered and provisioned by the pipeline.
	Distro string `toml:"distro"`

	// Features are the optional Windows features the subsystem requires.
	Features []string `toml:"features"`

	// RuntimePackageURL is the downloadable runtime package installed by the
	// primary mechanism.
	RuntimePackageURL string `toml:"runtime_package_url"`

	// KernelUpdateURL is the versioned kernel update component. Its install
	// is best-effort; leave empty to skip.
	KernelUpdateURL string `toml:"kernel_update_url"`

	// DownloadRetries bounds download retry attempts per artifact.
	DownloadRetries int `toml:"download_retries"`

	// PollIntervalSeconds is the registration poll interval.
	PollIntervalSeconds int `toml:"poll_interval_seconds"`

	// RegistrationWaitSeconds is the maximum total wait for the distribution
	// to appear in the registered list.
	RegistrationWaitSeconds int `toml:"registration_wait_seconds"`

	// GuestPackages are installed through the guest's package manager before
	// the application.
	GuestPackages []string `toml:"guest_packages"`

	// AppPackage is the application installed globally in the guest.
	AppPackage string `toml:"app_package"`

	// AppBinary is the command used to verify the application, via
	// "<AppBinary> --version". Defaults to AppPackage.
	AppBinary string `toml:"app_binary"`

	// LanguageBinary is the guest command that proves the language runtime is
	// installed.
	LanguageBinary string `toml:"language_binary"`

	// MinWindowsBuild is the minimum Windows version for the requirements
	// check, as a dotted build string.
	MinWindowsBuild string `toml:"min_windows_build"`
}

// Default returns the built-in configuration targeting Ubuntu with a Node.js
// toolchain.
func Default() *Config {
	return &Config{
		Distro: "Ubuntu",
		Features: []string{
			"Microsoft-Windows-Subsystem-Linux",
			"VirtualMachinePlatform",
		},
		RuntimePackageURL:       "https://github.com/microsoft/WSL/releases/latest/download/Microsoft.WSL_x64.msixbundle",
		KernelUpdateURL:         "https://wslstorestorage.blob.core.windows.net/wslblob/wsl_update_x64.msi",
		DownloadRetries:         3,
		PollIntervalSeconds:     5,
		RegistrationWaitSeconds: 180,
		GuestPackages:           []string{"ca-certificates", "curl", "nodejs", "npm"},
		AppPackage:              "wslup-app",
		AppBinary:               "wslup-app",
		LanguageBinary:          "node",
		MinWindowsBuild:         "10.0.19041",
	}
}

// Load reads a TOML config from path, layered over Default. A missing file
// returns the defaults unchanged.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if cfg.AppBinary == "" {
		cfg.AppBinary = cfg.AppPackage
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the configuration for values the pipeline cannot work with.
func (c *Config) Validate() error {
	if c.Distro == "" {
		return errors.New("config: distro must not be empty")
	}
	if len(c.Features) == 0 {
		return errors.New("config: at least one required feature must be listed")
	}
	if c.RuntimePackageURL == "" {
		return errors.New("config: runtime_package_url must not be empty")
	}
	if c.PollIntervalSeconds <= 0 {
		return errors.New("config: poll_interval_seconds must be positive")
	}
	if c.RegistrationWaitSeconds <= 0 {
		return errors.New("config: registration_wait_seconds must be positive")
	}
	if c.AppPackage == "" {
		return errors.New("config: app_package must not be empty")
	}
	return nil
}

// PollInterval returns the registration poll interval as a duration.
func (c *Config) PollInterval() time.Duration {
	return time.Duration(c.PollIntervalSeconds) * time.Second
}

// RegistrationWait returns the registration wait budget as a duration.
func (c *Config) RegistrationWait() time.Duration {
	return time.Duration(c.RegistrationWaitSeconds) * time.Second
}
