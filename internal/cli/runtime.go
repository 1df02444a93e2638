package cli

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/lumenworks/cmsctl/internal/client"
	"github.com/lumenworks/cmsctl/internal/config"
	"github.com/lumenworks/cmsctl/internal/transport"
)

const (
	flagConfig  = "config"
	flagContext = "context"
	flagVerbose = "verbose"
)

// commandRuntime holds everything a command needs beyond its own flags:
// the loaded config, the resolved context, and (for remote commands) an
// open transport.
type commandRuntime struct {
	Config          config.Config
	ConfigPath      string
	ResolvedContext config.ContextInfo
	Transport       transport.Transport
	Logger          zerolog.Logger
}

// Close releases the transport, if one was opened.
func (rt *commandRuntime) Close() error {
	if rt.Transport == nil {
		return nil
	}
	return rt.Transport.Close()
}

func rootStringFlag(cmd *cobra.Command, name string) string {
	v, _ := cmd.Root().PersistentFlags().GetString(name)
	return v
}

func rootBoolFlag(cmd *cobra.Command, name string) bool {
	v, _ := cmd.Root().PersistentFlags().GetBool(name)
	return v
}

func loggerFromCommand(cmd *cobra.Command) zerolog.Logger {
	if !rootBoolFlag(cmd, flagVerbose) {
		return zerolog.Nop()
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: cmd.ErrOrStderr()}).
		Level(zerolog.DebugLevel).
		With().Timestamp().Logger()
}

// runtimeFromCommand loads the config file and resolves the active
// context. It does not open a transport; commands that only touch local
// state (config, context) stop here.
func runtimeFromCommand(cmd *cobra.Command) (*commandRuntime, error) {
	cfg, path, err := config.Load(rootStringFlag(cmd, flagConfig))
	if err != nil {
		return nil, err
	}
	resolved, err := config.ResolveContext(cfg, rootStringFlag(cmd, flagContext))
	if err != nil {
		return nil, err
	}
	return &commandRuntime{
		Config:          cfg,
		ConfigPath:      path,
		ResolvedContext: resolved,
		Logger:          loggerFromCommand(cmd),
	}, nil
}

// runtimeAndClientFromCommand additionally opens the transport matching
// the context's server scheme. The caller owns rt and must Close it.
func runtimeAndClientFromCommand(cmd *cobra.Command) (*commandRuntime, *client.API, error) {
	rt, err := runtimeFromCommand(cmd)
	if err != nil {
		return nil, nil, err
	}
	if err := rt.openTransport(); err != nil {
		return nil, nil, err
	}
	baseURL := rt.ResolvedContext.Server
	if rt.ResolvedContext.UsesSSH() {
		// Tunneled requests are routed by the transport; the URL host is
		// a placeholder the client fills with its default.
		baseURL = ""
	}
	return rt, client.NewWithAuth(rt.Transport, baseURL, rt.ResolvedContext.Token), nil
}

func (rt *commandRuntime) openTransport() error {
	if rt.Transport != nil {
		return nil
	}
	resolved := rt.ResolvedContext
	if resolved.UsesSSH() {
		knownHosts := resolved.KnownHostsPath
		if knownHosts == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return fmt.Errorf("resolve home directory for known_hosts: %w", err)
			}
			knownHosts = home + "/.ssh/known_hosts"
		}
		tr, err := transport.NewSSHTransport(transport.SSHConfig{
			ServerURL:      resolved.Server,
			BackendAddr:    resolved.BackendAddr,
			KnownHostsPath: knownHosts,
			PrivateKeyPath: resolved.PrivateKeyPath,
		})
		if err != nil {
			return err
		}
		rt.Transport = tr
		return nil
	}
	rt.Transport = transport.NewHTTPTransport(transport.HTTPConfig{Logger: &rt.Logger})
	return nil
}
