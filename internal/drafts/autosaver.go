package drafts

import (
	"context"
	"sync"
	"time"
)

// AutosaveInterval is how often a dirty editor snapshot is persisted.
const AutosaveInterval = 12 * time.Second

// SnapshotFunc returns the current form snapshot and whether it has
// unsaved changes. A clean snapshot is not persisted.
type SnapshotFunc func() (snapshot map[string]any, dirty bool)

// Autosaver periodically persists a dirty form snapshot. One autosaver
// serves one edit screen; it is stopped on teardown and a new one is
// created when the edited entity changes.
type Autosaver struct {
	store    *Store
	kind     string
	entityID string
	snapshot SnapshotFunc
	interval time.Duration

	onError func(error)

	started  bool
	stopOnce sync.Once
	stop     chan struct{}
	done     chan struct{}
}

func NewAutosaver(store *Store, kind, entityID string, snapshot SnapshotFunc) *Autosaver {
	return &Autosaver{
		store:    store,
		kind:     kind,
		entityID: entityID,
		snapshot: snapshot,
		interval: AutosaveInterval,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// OnError installs an observer for failed ticks. Autosave failures never
// interrupt editing; without an observer they are dropped.
func (a *Autosaver) OnError(fn func(error)) { a.onError = fn }

// Start launches the ticker goroutine. Starting twice is a no-op.
func (a *Autosaver) Start() {
	if a.started {
		return
	}
	a.started = true
	go a.run()
}

func (a *Autosaver) run() {
	defer close(a.done)
	ticker := time.NewTicker(a.interval)
	defer ticker.Stop()
	for {
		select {
		case <-a.stop:
			return
		case <-ticker.C:
			a.tick()
		}
	}
}

func (a *Autosaver) tick() {
	snap, dirty := a.snapshot()
	if !dirty {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := a.store.Save(ctx, a.kind, a.entityID, snap); err != nil && a.onError != nil {
		a.onError(err)
	}
}

// Stop tears the ticker down and waits for the in-flight tick, if any.
func (a *Autosaver) Stop() {
	a.stopOnce.Do(func() { close(a.stop) })
	if a.started {
		<-a.done
	}
}
