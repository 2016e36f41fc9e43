package ops

import (
	"database/sql"
	"fmt"
	"sync"
	"time"

	"tally/internal/config"
	"tally/internal/db"
	"tally/internal/errors"
	"tally/internal/ledger"
	"tally/internal/remote"
	"tally/internal/session"
	"tally/internal/snapshot"
)

// Env bundles the collaborators every operation needs: the in-memory
// ledger store, the session arena, the sqlite state database, config,
// and the optional remote store for sync.
//
// The ledger store has a single writer: all mutating operations take
// env.mu for their full read-modify-persist span. Sessions have their
// own lock inside the engine.
type Env struct {
	mu sync.Mutex

	Store    *ledger.Store
	Sessions *session.Engine
	DB       *sql.DB
	Cfg      *config.Config
	Remote   remote.Store
	BaseDir  string

	// Now is the clock; operations read it once per call.
	Now func() time.Time
	Loc *time.Location

	// lastModified is the millis instant of the last local mutation.
	// Sync comparisons stamp the local snapshot with this value, not the
	// wall clock, so an untouched ledger compares older than a fresher
	// remote. Seeded from the persisted snapshot on startup, advanced by
	// persist. Guarded by mu.
	lastModified int64
}

// NewEnv builds an environment from an initialized database and config.
// The persisted ledger state is loaded if present; otherwise the store
// starts empty. A nil database disables persistence (used in tests).
func NewEnv(database *sql.DB, cfg *config.Config, baseDir string) (*Env, error) {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}

	env := &Env{
		Store:   ledger.NewStore(),
		DB:      database,
		Cfg:     cfg,
		BaseDir: baseDir,
		Now:     time.Now,
		Loc:     time.Local,
	}
	env.Sessions = session.NewEngine(nil, nil)
	if cfg.MinSessionSeconds > 0 {
		env.Sessions.SetMinElapsed(time.Duration(cfg.MinSessionSeconds) * time.Second)
	}

	if database != nil {
		data, ok, err := db.LoadState(database, db.LedgerKey)
		if err != nil {
			return nil, err
		}
		if ok {
			snap, err := snapshot.Decode(data)
			if err != nil {
				return nil, fmt.Errorf("failed to decode persisted ledger: %w", err)
			}
			env.Store = snapshot.Restore(snap)
			env.lastModified = snap.Timestamp
		}
	}

	if cfg.SyncDir != "" {
		store, err := remote.NewDirStore(cfg.SyncDir)
		if err != nil {
			return nil, err
		}
		env.Remote = store
	}

	return env, nil
}

// nowMillis reads the clock once, in milliseconds since epoch.
func (env *Env) nowMillis() int64 {
	return env.Now().UnixMilli()
}

// persist writes the current ledger state to the database and prunes
// state history to the configured retention. Callers hold env.mu.
func (env *Env) persist() error {
	return env.persistAt(env.nowMillis())
}

// persistAt is persist with an explicit mutation instant. Applying a
// downloaded snapshot persists under the remote's own timestamp so the
// two sides subsequently compare as in sync.
func (env *Env) persistAt(ts int64) error {
	env.lastModified = ts
	if env.DB == nil {
		return nil
	}
	snap := snapshot.Capture(env.Store, snapshot.DefaultVersion, ts)
	data, err := snapshot.Encode(snap)
	if err != nil {
		return errors.NewInternal(err)
	}
	if err := db.SaveState(env.DB, db.LedgerKey, data, ts); err != nil {
		return errors.NewInternal(err)
	}
	keep := env.Cfg.HistoryKeep
	if keep <= 0 {
		keep = config.DefaultHistoryKeep
	}
	if _, err := db.PruneHistory(env.DB, db.LedgerKey, keep); err != nil {
		return errors.NewInternal(err)
	}
	return nil
}

// requireRemote returns the configured remote store or a structured error.
func (env *Env) requireRemote() (remote.Store, error) {
	if env.Remote == nil {
		return nil, errors.NewInvalidRequest("no sync directory configured (set sync_dir in config.json)")
	}
	return env.Remote, nil
}
