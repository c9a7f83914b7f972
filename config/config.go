// ABOUTME: Layered swarmbase configuration: defaults, optional swarmbase.yaml, then SWARMBASE_* env.
// ABOUTME: Enforces that a server reachable beyond loopback requires an auth token.
package config

import (
	"errors"
	"fmt"
	"net"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

var (
	ErrRemoteWithoutToken = errors.New(
		"SWARMBASE_ALLOW_REMOTE is true but SWARMBASE_AUTH_TOKEN is not set; refusing to start without authentication",
	)
	ErrNonLoopbackBind = errors.New(
		"SWARMBASE_BIND is a non-loopback address but SWARMBASE_ALLOW_REMOTE is not true",
	)
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "SWARMBASE"

// FileName is the config file searched for when none is given explicitly.
const FileName = "swarmbase"

// Keys, also the YAML field names.
const (
	KeyDataDir     = "data_dir"
	KeyBind        = "bind"
	KeyAllowRemote = "allow_remote"
	KeyAuthToken   = "auth_token"
	KeyAPIURL      = "api_url"
	KeyLogLevel    = "log_level"
	KeyLogFormat   = "log_format"
	KeyTarget      = "target"
	KeyPython      = "python"
)

// Config holds settings shared by the CLI and the local backend.
type Config struct {
	DataDir     string // SQLite and generated state (default: XDG data dir)
	Bind        string // serve address (default: 127.0.0.1:7780)
	AllowRemote bool   // allow non-loopback binds
	AuthToken   string // bearer token for the backend API
	APIURL      string // backend used by export/validate (default: http://<bind>)
	LogLevel    string
	LogFormat   string
	Target      string // default creator target
	Python      string // interpreter used to create virtualenvs

	// File is the config file that was read, if any.
	File string
}

// DBPath is the SQLite database inside DataDir.
func (c *Config) DBPath() string {
	return filepath.Join(c.DataDir, "swarmbase.db")
}

// Load reads configuration. An explicit path must exist; otherwise
// swarmbase.yaml is looked up in the working directory and the XDG config
// directory, and its absence is not an error.
func Load(path string) (*Config, error) {
	v := viper.New()

	dataDir, err := DefaultDataDir()
	if err != nil {
		return nil, err
	}
	v.SetDefault(KeyDataDir, dataDir)
	v.SetDefault(KeyBind, "127.0.0.1:7780")
	v.SetDefault(KeyAllowRemote, false)
	v.SetDefault(KeyAuthToken, "")
	v.SetDefault(KeyAPIURL, "")
	v.SetDefault(KeyLogLevel, "info")
	v.SetDefault(KeyLogFormat, "console")
	v.SetDefault(KeyTarget, "swarmbasecore")
	v.SetDefault(KeyPython, "python3")

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	} else {
		v.SetConfigName(FileName)
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if dir, err := DefaultConfigDir(); err == nil {
			v.AddConfigPath(dir)
		}
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("read config: %w", err)
			}
		}
	}

	cfg := &Config{
		DataDir:     v.GetString(KeyDataDir),
		Bind:        v.GetString(KeyBind),
		AllowRemote: v.GetBool(KeyAllowRemote),
		AuthToken:   v.GetString(KeyAuthToken),
		APIURL:      v.GetString(KeyAPIURL),
		LogLevel:    v.GetString(KeyLogLevel),
		LogFormat:   v.GetString(KeyLogFormat),
		Target:      v.GetString(KeyTarget),
		Python:      v.GetString(KeyPython),
		File:        v.ConfigFileUsed(),
	}
	if cfg.APIURL == "" {
		cfg.APIURL = "http://" + cfg.Bind
	}
	return cfg, nil
}

// ValidateServe checks the bind settings before the backend starts. Only
// 127.0.0.0/8, ::1 and "localhost" count as loopback.
func (c *Config) ValidateServe() error {
	if c.AllowRemote && c.AuthToken == "" {
		return ErrRemoteWithoutToken
	}
	if c.AllowRemote {
		return nil
	}

	host, _, err := net.SplitHostPort(c.Bind)
	if err != nil {
		return fmt.Errorf("invalid bind address %q: %w", c.Bind, err)
	}
	if host == "localhost" {
		return nil
	}
	if ip := net.ParseIP(host); ip != nil && ip.IsLoopback() {
		return nil
	}
	return fmt.Errorf("%w: SWARMBASE_BIND=%s", ErrNonLoopbackBind, c.Bind)
}
