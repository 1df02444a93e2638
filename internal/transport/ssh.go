package transport

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/crypto/ssh"
	"golang.org/x/crypto/ssh/knownhosts"
)

const (
	DefaultSSHPort = 22
	// DefaultBackendAddr is where the CMS backend listens on the remote
	// host when a context does not override it.
	DefaultBackendAddr = "127.0.0.1:4000"
)

// SSHConfig configures an SSH-tunneled transport for ssh:// servers.
type SSHConfig struct {
	ServerURL      string
	BackendAddr    string
	DialTimeout    time.Duration
	KnownHostsPath string
	PrivateKeyPath string
	AuthMethods    []ssh.AuthMethod
}

// Endpoint is the parsed ssh://user@host[:port] target.
type Endpoint struct {
	User string
	Host string
	Port int
}

func (e Endpoint) Address() string {
	return net.JoinHostPort(e.Host, strconv.Itoa(e.Port))
}

// ParseSSHServerURL parses ssh://user@host[:port] server URLs.
func ParseSSHServerURL(raw string) (Endpoint, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Endpoint{}, fmt.Errorf("server URL is required")
	}
	u, err := url.Parse(raw)
	if err != nil {
		return Endpoint{}, fmt.Errorf("parse server URL %q: %w", raw, err)
	}
	if u.Scheme != "ssh" {
		return Endpoint{}, fmt.Errorf("invalid server URL scheme %q: expected ssh", u.Scheme)
	}
	host := strings.TrimSpace(u.Hostname())
	if host == "" {
		return Endpoint{}, fmt.Errorf("server URL %q has no host", raw)
	}
	port := DefaultSSHPort
	if p := u.Port(); p != "" {
		port, err = strconv.Atoi(p)
		if err != nil || port < 1 || port > 65535 {
			return Endpoint{}, fmt.Errorf("server URL %q has invalid port %q", raw, p)
		}
	}
	user := ""
	if u.User != nil {
		user = strings.TrimSpace(u.User.Username())
	}
	if user == "" {
		return Endpoint{}, fmt.Errorf("server URL %q has no user (expected ssh://user@host)", raw)
	}
	return Endpoint{User: user, Host: host, Port: port}, nil
}

// SSHTransport forwards backend requests through an SSH connection. The
// SSH session is established lazily on first use and reused afterwards.
type SSHTransport struct {
	cfg    SSHConfig
	client *http.Client

	mu   sync.Mutex
	conn *ssh.Client
}

func NewSSHTransport(cfg SSHConfig) (*SSHTransport, error) {
	if _, err := ParseSSHServerURL(cfg.ServerURL); err != nil {
		return nil, err
	}
	if strings.TrimSpace(cfg.BackendAddr) == "" {
		cfg.BackendAddr = DefaultBackendAddr
	}
	if cfg.DialTimeout <= 0 {
		cfg.DialTimeout = DefaultDialTimeout
	}
	t := &SSHTransport{cfg: cfg}
	t.client = &http.Client{
		Transport: &http.Transport{
			DialContext: t.dialBackend,
		},
	}
	return t, nil
}

func (t *SSHTransport) Do(ctx context.Context, req *http.Request) (*http.Response, error) {
	resp, err := t.client.Do(req.WithContext(ctx))
	if err != nil {
		return nil, err
	}
	return resp, nil
}

func (t *SSHTransport) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.conn == nil {
		return nil
	}
	err := t.conn.Close()
	t.conn = nil
	return err
}

// dialBackend opens a forwarded connection to the backend address through
// the shared SSH session, regardless of the address the HTTP layer asked
// for; the base URL host is only a label when tunneling.
func (t *SSHTransport) dialBackend(ctx context.Context, network, addr string) (net.Conn, error) {
	conn, err := t.sshConn(ctx)
	if err != nil {
		return nil, err
	}
	fwd, err := conn.DialContext(ctx, "tcp", t.cfg.BackendAddr)
	if err != nil {
		return nil, fmt.Errorf("%w: forward to %s: %v", ErrSSHTunnel, t.cfg.BackendAddr, err)
	}
	return fwd, nil
}

func (t *SSHTransport) sshConn(ctx context.Context) (*ssh.Client, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.conn != nil {
		return t.conn, nil
	}

	endpoint, err := ParseSSHServerURL(t.cfg.ServerURL)
	if err != nil {
		return nil, err
	}
	hostKeyCallback, err := t.hostKeyCallback()
	if err != nil {
		return nil, err
	}
	auth, err := t.authMethods()
	if err != nil {
		return nil, err
	}

	clientCfg := &ssh.ClientConfig{
		User:            endpoint.User,
		Auth:            auth,
		HostKeyCallback: hostKeyCallback,
		Timeout:         t.cfg.DialTimeout,
	}

	dialer := net.Dialer{Timeout: t.cfg.DialTimeout}
	raw, err := dialer.DialContext(ctx, "tcp", endpoint.Address())
	if err != nil {
		return nil, fmt.Errorf("%w: dial %s: %v", ErrSSHUnreachable, endpoint.Address(), err)
	}
	sshConn, chans, reqs, err := ssh.NewClientConn(raw, endpoint.Address(), clientCfg)
	if err != nil {
		_ = raw.Close()
		if strings.Contains(err.Error(), "knownhosts") || strings.Contains(err.Error(), "host key") {
			return nil, fmt.Errorf("%w: %v", ErrSSHHostKey, err)
		}
		return nil, fmt.Errorf("%w: %v", ErrSSHAuth, err)
	}
	t.conn = ssh.NewClient(sshConn, chans, reqs)
	return t.conn, nil
}

func (t *SSHTransport) hostKeyCallback() (ssh.HostKeyCallback, error) {
	path := strings.TrimSpace(t.cfg.KnownHostsPath)
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("%w: resolve home directory: %v", ErrSSHHostKey, err)
		}
		path = filepath.Join(home, ".ssh", "known_hosts")
	}
	cb, err := knownhosts.New(path)
	if err != nil {
		return nil, fmt.Errorf("%w: load known_hosts %s: %v", ErrSSHHostKey, path, err)
	}
	return cb, nil
}

func (t *SSHTransport) authMethods() ([]ssh.AuthMethod, error) {
	if len(t.cfg.AuthMethods) > 0 {
		return t.cfg.AuthMethods, nil
	}
	path := strings.TrimSpace(t.cfg.PrivateKeyPath)
	if path == "" {
		return nil, fmt.Errorf("%w: no private key configured", ErrSSHAuth)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: read private key %s: %v", ErrSSHAuth, path, err)
	}
	signer, err := ssh.ParsePrivateKey(data)
	if err != nil {
		return nil, fmt.Errorf("%w: parse private key %s: %v", ErrSSHAuth, path, err)
	}
	return []ssh.AuthMethod{ssh.PublicKeys(signer)}, nil
}
