// Package drafts persists autosaved form snapshots on device, so a
// crashed or closed editor can restore unsaved work on the next open.
package drafts

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

const (
	keyPrefix = "cmsctl-draft"

	// SchemaVersion guards snapshot shape changes: drafts written by an
	// older layout are ignored rather than half-merged.
	SchemaVersion = 1

	savedAtLayout = time.RFC3339Nano
)

// Draft is one persisted form snapshot.
type Draft struct {
	Kind     string
	EntityID string
	Snapshot map[string]any
	SavedAt  time.Time
}

type Store struct {
	db  *sql.DB
	now func() time.Time
}

// DefaultPath places the draft database next to the CLI config.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}
	return filepath.Join(home, ".cmsctl", "drafts.db"), nil
}

// Open opens (creating if needed) the draft database at path.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("draft database path is required")
	}
	cleanPath := filepath.Clean(path)
	if err := os.MkdirAll(filepath.Dir(cleanPath), 0o755); err != nil {
		return nil, fmt.Errorf("create draft directory: %w", err)
	}

	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(%d)&_pragma=journal_mode(WAL)", cleanPath, 5000)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open draft store %s: %w", cleanPath, err)
	}
	db.SetMaxOpenConns(1)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping draft store %s: %w", cleanPath, err)
	}
	if _, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS drafts (
			key            TEXT PRIMARY KEY,
			kind           TEXT NOT NULL,
			entity_id      TEXT NOT NULL,
			snapshot       TEXT NOT NULL,
			schema_version INTEGER NOT NULL,
			saved_at       TEXT NOT NULL
		);
	`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create drafts table: %w", err)
	}

	return &Store{db: db, now: time.Now}, nil
}

func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

func draftKey(kind, entityID string) string {
	return keyPrefix + ":" + kind + ":" + entityID
}

// Save upserts the snapshot for one entity. Saving replaces any earlier
// draft for the same entity outright.
func (s *Store) Save(ctx context.Context, kind, entityID string, snapshot map[string]any) error {
	if strings.TrimSpace(kind) == "" || strings.TrimSpace(entityID) == "" {
		return fmt.Errorf("draft kind and entity id are required")
	}
	payload, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("serialize draft snapshot: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO drafts (key, kind, entity_id, snapshot, schema_version, saved_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET
			snapshot = excluded.snapshot,
			schema_version = excluded.schema_version,
			saved_at = excluded.saved_at;
	`, draftKey(kind, entityID), kind, entityID, string(payload), SchemaVersion, s.now().UTC().Format(savedAtLayout))
	if err != nil {
		return fmt.Errorf("save draft %s/%s: %w", kind, entityID, err)
	}
	return nil
}

// Load reads the draft for one entity. The second return is false when
// no usable draft exists; drafts written under a different schema
// version are treated as absent.
func (s *Store) Load(ctx context.Context, kind, entityID string) (Draft, bool, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT snapshot, schema_version, saved_at FROM drafts WHERE key = ?;
	`, draftKey(kind, entityID))

	var (
		payload string
		version int
		savedAt string
	)
	if err := row.Scan(&payload, &version, &savedAt); err != nil {
		if err == sql.ErrNoRows {
			return Draft{}, false, nil
		}
		return Draft{}, false, fmt.Errorf("load draft %s/%s: %w", kind, entityID, err)
	}
	if version != SchemaVersion {
		return Draft{}, false, nil
	}

	var snapshot map[string]any
	if err := json.Unmarshal([]byte(payload), &snapshot); err != nil {
		return Draft{}, false, fmt.Errorf("decode draft %s/%s: %w", kind, entityID, err)
	}
	ts, err := time.Parse(savedAtLayout, savedAt)
	if err != nil {
		return Draft{}, false, fmt.Errorf("decode draft timestamp %s/%s: %w", kind, entityID, err)
	}
	return Draft{Kind: kind, EntityID: entityID, Snapshot: snapshot, SavedAt: ts}, true, nil
}

// Delete discards the draft for one entity. Called after a successful
// server save; deleting a missing draft is not an error.
func (s *Store) Delete(ctx context.Context, kind, entityID string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM drafts WHERE key = ?;`, draftKey(kind, entityID)); err != nil {
		return fmt.Errorf("delete draft %s/%s: %w", kind, entityID, err)
	}
	return nil
}

// Merge overlays a draft snapshot on server data. Draft fields win; keys
// only present on the server survive untouched.
func Merge(server, draft map[string]any) map[string]any {
	out := make(map[string]any, len(server)+len(draft))
	for k, v := range server {
		out[k] = v
	}
	for k, v := range draft {
		out[k] = v
	}
	return out
}
