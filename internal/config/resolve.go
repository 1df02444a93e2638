package config

import (
	"fmt"
	"sort"
	"strings"
)

// ResolveContext resolves either an explicit context name or current-context.
func ResolveContext(cfg Config, explicitName string) (ContextInfo, error) {
	name := strings.TrimSpace(explicitName)
	if name == "" {
		name = strings.TrimSpace(cfg.CurrentContext)
		if name == "" {
			return ContextInfo{}, fmt.Errorf("no context selected: set current-context or pass --context")
		}
	}

	for _, ctx := range cfg.Contexts {
		if strings.TrimSpace(ctx.Name) != name {
			continue
		}
		return ContextInfo{
			Name:           strings.TrimSpace(ctx.Name),
			Server:         strings.TrimSpace(ctx.Server),
			Token:          strings.TrimSpace(ctx.Token),
			BackendAddr:    strings.TrimSpace(ctx.BackendAddr),
			PrivateKeyPath: strings.TrimSpace(ctx.PrivateKeyPath),
			KnownHostsPath: strings.TrimSpace(ctx.KnownHostsPath),
		}, nil
	}

	available := availableContextNames(cfg.Contexts)
	if len(available) == 0 {
		return ContextInfo{}, fmt.Errorf("context %q not found: config has no contexts", name)
	}
	return ContextInfo{}, fmt.Errorf("context %q not found; available contexts: %s", name, strings.Join(available, ", "))
}

// SetToken updates the stored token for the named context in place.
func SetToken(cfg *Config, name, token string) error {
	name = strings.TrimSpace(name)
	for i := range cfg.Contexts {
		if strings.TrimSpace(cfg.Contexts[i].Name) == name {
			cfg.Contexts[i].Token = strings.TrimSpace(token)
			return nil
		}
	}
	return fmt.Errorf("context %q not found", name)
}

func availableContextNames(contexts []Context) []string {
	names := make([]string, 0, len(contexts))
	for _, ctx := range contexts {
		name := strings.TrimSpace(ctx.Name)
		if name != "" {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}
