package transport

import "errors"

var (
	// ErrSSHAuth indicates SSH authentication failure.
	ErrSSHAuth = errors.New("ssh authentication failed")
	// ErrSSHHostKey indicates known-hosts verification failure.
	ErrSSHHostKey = errors.New("ssh host key verification failed")
	// ErrSSHUnreachable indicates host connectivity or timeout failure.
	ErrSSHUnreachable = errors.New("ssh host unreachable")
	// ErrSSHTunnel indicates tunnel forwarding failure.
	ErrSSHTunnel = errors.New("ssh tunnel failed")
)
