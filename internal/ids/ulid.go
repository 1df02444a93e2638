// Package ids generates client-local identifiers for objects that exist
// before the backend has assigned them one (optimistic media previews,
// draft snapshots).
package ids

import (
	"crypto/rand"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

var (
	entropyMu sync.Mutex
	entropy   = ulid.Monotonic(rand.Reader, 0)
)

// New returns a lexically sortable local id for the given time.
func New(now time.Time) (string, error) {
	entropyMu.Lock()
	defer entropyMu.Unlock()
	id, err := ulid.New(ulid.Timestamp(now.UTC()), entropy)
	if err != nil {
		if err == io.EOF {
			return "", fmt.Errorf("generate local id: insufficient entropy")
		}
		return "", fmt.Errorf("generate local id: %w", err)
	}
	return id.String(), nil
}
