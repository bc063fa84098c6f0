package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/jenkinsapi/jenkins-workbench/internal/models"
)

// Defaults applied to anything left unset.
const (
	DefaultListen   = ":8080"
	DefaultTimeout  = 30 * time.Second
	DefaultLogLevel = "info"
)

// JenkinsConfig is the controller the workbench manages.
type JenkinsConfig struct {
	URL        string        `yaml:"url"`
	Username   string        `yaml:"username"`
	Token      string        `yaml:"token"`
	Insecure   bool          `yaml:"insecure"`
	CACert     string        `yaml:"ca_cert"`      // inline PEM
	CACertFile string        `yaml:"ca_cert_file"` // or a path to one
	Timeout    time.Duration `yaml:"timeout"`
}

// LogConfig selects the log level and output format ("text" or "json").
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Config holds all configuration (config file, environment, CLI flags).
type Config struct {
	Listen           string        `yaml:"listen"`
	Jenkins          JenkinsConfig `yaml:"jenkins"`
	Log              LogConfig     `yaml:"log"`
	StrictParameters bool          `yaml:"strict_parameters"`
}

// Environment variables that override the file. Tokens are best kept out of
// config files.
const (
	EnvURL      = "JENKINS_URL"
	EnvUsername = "JENKINS_USER"
	EnvToken    = "JENKINS_TOKEN"
)

// Load reads the YAML file at path, if any, overlays the environment and
// applies defaults. CLI flags are applied on top by the caller.
func Load(path string) (*Config, error) {
	c := &Config{}
	if path != "" {
		if err := c.loadFile(path); err != nil {
			return nil, err
		}
	}
	c.applyEnv(os.Getenv)
	c.ApplyDefaults()
	return c, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parsing %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv(getenv func(string) string) {
	if v := getenv(EnvURL); v != "" {
		c.Jenkins.URL = v
	}
	if v := getenv(EnvUsername); v != "" {
		c.Jenkins.Username = v
	}
	if v := getenv(EnvToken); v != "" {
		c.Jenkins.Token = v
	}
}

// ApplyDefaults fills anything still unset.
func (c *Config) ApplyDefaults() {
	if c.Listen == "" {
		c.Listen = DefaultListen
	}
	if c.Jenkins.Timeout == 0 {
		c.Jenkins.Timeout = DefaultTimeout
	}
	if c.Log.Level == "" {
		c.Log.Level = DefaultLogLevel
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
}

// Validate checks the settings needed to reach the controller.
func (c *Config) Validate() error {
	if c.Jenkins.URL == "" {
		return errors.New("jenkins.url is required")
	}
	u, err := url.Parse(c.Jenkins.URL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("jenkins.url %q: must be an http(s) URL", c.Jenkins.URL)
	}
	if c.Jenkins.Token != "" && c.Jenkins.Username == "" {
		return errors.New("jenkins.username is required when a token is set")
	}
	switch strings.ToLower(c.Log.Format) {
	case "text", "json":
	default:
		return fmt.Errorf("log.format %q: must be text or json", c.Log.Format)
	}
	return nil
}

// Connection builds the connection handed to the facade, reading the CA
// bundle file when one is configured.
func (c *Config) Connection() (*models.Connection, error) {
	caCert := c.Jenkins.CACert
	if caCert == "" && c.Jenkins.CACertFile != "" {
		data, err := os.ReadFile(c.Jenkins.CACertFile)
		if err != nil {
			return nil, fmt.Errorf("reading ca_cert_file: %w", err)
		}
		caCert = string(data)
	}
	return &models.Connection{
		Name:     hostOf(c.Jenkins.URL),
		URL:      c.Jenkins.URL,
		Username: c.Jenkins.Username,
		Token:    c.Jenkins.Token,
		Insecure: c.Jenkins.Insecure,
		CACert:   caCert,
		Timeout:  c.Jenkins.Timeout,
	}, nil
}

func hostOf(raw string) string {
	if u, err := url.Parse(raw); err == nil && u.Host != "" {
		return u.Host
	}
	return raw
}
