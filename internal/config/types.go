package config

import (
	"fmt"
	"net/url"
	"strings"
)

const (
	EnvConfigPath     = "CMSCTL_CONFIG"
	DefaultAPIVersion = "cmsctl.dev/v1"
)

// Config is the cmsctl CLI configuration file structure.
type Config struct {
	APIVersion     string    `yaml:"apiVersion,omitempty"`
	CurrentContext string    `yaml:"current-context"`
	Contexts       []Context `yaml:"contexts"`
}

// Context defines one named backend target. Server is either an
// http(s):// base URL or an ssh://user@host target that tunnels to
// BackendAddr on the remote side.
type Context struct {
	Name           string `yaml:"name"`
	Server         string `yaml:"server"`
	Token          string `yaml:"token,omitempty"`
	BackendAddr    string `yaml:"backendAddr,omitempty"`
	PrivateKeyPath string `yaml:"privateKeyPath,omitempty"`
	KnownHostsPath string `yaml:"knownHostsPath,omitempty"`
}

// ContextInfo is the resolved context used by command and transport layers.
type ContextInfo struct {
	Name           string
	Server         string
	Token          string
	BackendAddr    string
	PrivateKeyPath string
	KnownHostsPath string
}

// UsesSSH reports whether the context targets the backend through an SSH
// tunnel rather than a direct HTTP base URL.
func (c ContextInfo) UsesSSH() bool {
	return strings.HasPrefix(strings.TrimSpace(c.Server), "ssh://")
}

func (c *Config) normalize() {
	if strings.TrimSpace(c.APIVersion) == "" {
		c.APIVersion = DefaultAPIVersion
	}
}

// Validate checks config invariants that must hold for the file to be usable.
func (c Config) Validate() error {
	seen := make(map[string]struct{}, len(c.Contexts))
	for i, ctx := range c.Contexts {
		name := strings.TrimSpace(ctx.Name)
		if name == "" {
			return fmt.Errorf("contexts[%d].name is required", i)
		}
		if _, exists := seen[name]; exists {
			return fmt.Errorf("duplicate context name %q", name)
		}
		seen[name] = struct{}{}

		server := strings.TrimSpace(ctx.Server)
		if server == "" {
			return fmt.Errorf("context %q: server is required", name)
		}
		u, err := url.Parse(server)
		if err != nil {
			return fmt.Errorf("context %q: invalid server URL: %w", name, err)
		}
		switch u.Scheme {
		case "http", "https", "ssh":
		default:
			return fmt.Errorf("context %q: server scheme %q not supported (expected http, https, or ssh)", name, u.Scheme)
		}
	}
	return nil
}
