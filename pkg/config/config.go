/*
Copyright 2021 Stefan Prodan

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"sigs.k8s.io/yaml"
)

const (
	MLDeployConfigKind       = "Config"
	MLDeployConfigApiVersion = "mldeploy.dev/v1"

	DefaultManagePort     = 8002
	DefaultRESTPort       = 8000
	DefaultManagementPath = "/manage/LATEST"
	DefaultSettingsPath   = "settings"

	// PasswordEnvVar overrides the connection password when set.
	PasswordEnvVar = "MLDEPLOY_PASSWORD"
)

type Config struct {
	Kind       string `json:"kind"`
	APIVersion string `json:"apiVersion"`

	// Connection holds the cluster address and credentials.
	Connection *Connection `json:"connection,omitempty"`

	// Settings holds the location of the resource definitions.
	Settings *Settings `json:"settings,omitempty"`

	// ManagementPath is the base path of the management API.
	ManagementPath string `json:"managementPath,omitempty"`

	// ServerVersion is a semver constraint the cluster version must satisfy, e.g. '>= 10.0'.
	ServerVersion string `json:"serverVersion,omitempty"`
}

type Connection struct {
	Host               string `json:"host"`
	Scheme             string `json:"scheme,omitempty"`
	ManagePort         int    `json:"managePort"`
	RESTPort           int    `json:"restPort"`
	Username           string `json:"username,omitempty"`
	Password           string `json:"password,omitempty"`
	InsecureSkipVerify bool   `json:"insecureSkipVerify,omitempty"`
}

type Settings struct {
	// Path is the root directory of the resource definitions.
	Path string `json:"path"`

	// Environment selects the '<path>/env/<environment>' overlay.
	Environment string `json:"environment,omitempty"`

	// AgeIdentity is the path to the age identities file used to decrypt '.age' definitions.
	AgeIdentity string `json:"ageIdentity,omitempty"`
}

// NewConfig returns a config with the default connection and settings.
func NewConfig() *Config {
	return &Config{
		Kind:           MLDeployConfigKind,
		APIVersion:     MLDeployConfigApiVersion,
		Connection:     defaultConnection(),
		Settings:       defaultSettings(),
		ManagementPath: DefaultManagementPath,
	}
}

func defaultConnection() *Connection {
	return &Connection{
		Host:       "localhost",
		Scheme:     "http",
		ManagePort: DefaultManagePort,
		RESTPort:   DefaultRESTPort,
		Username:   "admin",
	}
}

func defaultSettings() *Settings {
	return &Settings{
		Path: DefaultSettingsPath,
	}
}

// DefaultConfigPath returns '$HOME/.mldeploy/config'
func DefaultConfigPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(homeDir, ".mldeploy/config"), nil
}

// Read loads the config from the specified path,
// if the config file is not found, a default is returned.
func Read(configPath string) (*Config, error) {
	if configPath == "" {
		p, err := DefaultConfigPath()
		if err != nil {
			return nil, fmt.Errorf("$HOME dir can't be determined, error: %w", err)
		}
		configPath = p
	}

	cfg := NewConfig()
	cfgData, err := os.ReadFile(configPath)
	switch {
	case errors.Is(err, os.ErrNotExist):
		cfg.applyEnv()
		return cfg, nil
	case err != nil:
		return nil, err
	}

	cfg = &Config{}
	if err := yaml.Unmarshal(cfgData, cfg); err != nil {
		return nil, err
	}

	if cfg.Kind != "" && cfg.Kind != MLDeployConfigKind {
		return nil, fmt.Errorf("the config kind must be %s, got '%s'", MLDeployConfigKind, cfg.Kind)
	}

	cfg.setDefaults()
	cfg.applyEnv()

	if cfg.Connection.Host == "" {
		return nil, fmt.Errorf("the connection host can't be empty")
	}

	return cfg, nil
}

func (c *Config) setDefaults() {
	c.Kind = MLDeployConfigKind
	c.APIVersion = MLDeployConfigApiVersion

	if c.Connection == nil {
		c.Connection = defaultConnection()
	}
	if c.Connection.Scheme == "" {
		c.Connection.Scheme = "http"
	}
	if c.Connection.ManagePort == 0 {
		c.Connection.ManagePort = DefaultManagePort
	}
	if c.Connection.RESTPort == 0 {
		c.Connection.RESTPort = DefaultRESTPort
	}

	if c.Settings == nil {
		c.Settings = defaultSettings()
	}
	if c.Settings.Path == "" {
		c.Settings.Path = DefaultSettingsPath
	}

	if c.ManagementPath == "" {
		c.ManagementPath = DefaultManagementPath
	}
}

func (c *Config) applyEnv() {
	if password, ok := os.LookupEnv(PasswordEnvVar); ok {
		c.Connection.Password = password
	}
}

// Write saves the config at the given path, if no path is specified
// it will create or override '$HOME/.mldeploy/config'.
func (c *Config) Write(configPath string) error {
	if configPath == "" {
		p, err := DefaultConfigPath()
		if err != nil {
			return err
		}
		configPath = p
	}

	if err := os.MkdirAll(filepath.Dir(configPath), os.FileMode(0755)); err != nil {
		return err
	}

	cfgData, err := yaml.Marshal(c)
	if err != nil {
		return err
	}

	// the file may hold credentials
	if err := os.WriteFile(configPath, cfgData, os.FileMode(0600)); err != nil {
		return err
	}

	return nil
}

// Redacted returns a copy of the config without the connection password.
func (c *Config) Redacted() *Config {
	out := *c
	if c.Connection != nil {
		conn := *c.Connection
		if conn.Password != "" {
			conn.Password = "*****"
		}
		out.Connection = &conn
	}
	return &out
}
