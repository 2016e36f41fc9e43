package ops

import (
	"context"
	stderrors "errors"
	"fmt"

	"tally/internal/errors"
	"tally/internal/remote"
	"tally/internal/snapshot"
)

// RemoteObject is the remote store's name for the ledger snapshot.
const RemoteObject = "ledger.json"

// SyncUploadOutput contains the result of the SyncUpload operation.
type SyncUploadOutput struct {
	Timestamp int64              `json:"timestamp"`
	Stats     snapshot.StatsInfo `json:"stats"`
}

// SyncUpload pushes the local ledger to the remote store. The snapshot is
// checked first: an upload that would clobber the remote with an invalid
// or empty ledger is refused with the reason, never silently skipped.
func SyncUpload(ctx context.Context, env *Env) (*SyncUploadOutput, error) {
	store, err := env.requireRemote()
	if err != nil {
		return nil, err
	}

	env.mu.Lock()
	snap := snapshot.Capture(env.Store, snapshot.DefaultVersion, env.nowMillis())
	env.mu.Unlock()

	check := snapshot.CanUpload(snap)
	if !check.CanUpload {
		return nil, errors.NewUnsafeUpload(check.Reason)
	}

	data, err := snapshot.Encode(snap)
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	if err := store.Upload(ctx, RemoteObject, data); err != nil {
		return nil, errors.NewInternal(err)
	}

	// Local and remote now carry the same state; adopt the upload
	// instant as the local mutation time so they compare as in sync.
	env.mu.Lock()
	env.lastModified = snap.Timestamp
	env.mu.Unlock()

	return &SyncUploadOutput{Timestamp: snap.Timestamp, Stats: snapshot.Stats(snap)}, nil
}

// SyncDownloadInput contains parameters for the SyncDownload operation.
type SyncDownloadInput struct {
	// Force applies the remote snapshot even when the local ledger is
	// newer. Without it, a newer local ledger refuses the overwrite.
	Force bool
}

// SyncDownloadOutput contains the result of the SyncDownload operation.
type SyncDownloadOutput struct {
	Applied    bool                `json:"applied"`
	BackupName string              `json:"backup_name,omitempty"`
	Comparison snapshot.Comparison `json:"comparison"`
	Warnings   []string            `json:"warnings,omitempty"`
	Stats      *snapshot.StatsInfo `json:"stats,omitempty"`
}

// SyncDownload pulls the remote snapshot and replaces the local ledger
// with it. The remote payload is validated and repaired before anything
// changes; the current local state is backed up to the remote first; the
// store is then swapped whole. A newer local ledger is only overwritten
// with Force.
func SyncDownload(ctx context.Context, env *Env, input SyncDownloadInput) (*SyncDownloadOutput, error) {
	store, err := env.requireRemote()
	if err != nil {
		return nil, err
	}

	data, err := store.Download(ctx, RemoteObject)
	if err != nil {
		if stderrors.Is(err, remote.ErrNotFound) {
			return nil, errors.NewRemoteEmpty(RemoteObject)
		}
		return nil, errors.NewInternal(err)
	}

	result := snapshot.ValidateBytes(data)
	if !result.IsValid {
		return nil, errors.NewValidationFailed(result.Errors)
	}
	remoteSnap, err := snapshot.Decode(data)
	if err != nil {
		return nil, errors.NewValidationFailed([]string{err.Error()})
	}
	repaired := snapshot.Repair(remoteSnap, env.nowMillis())

	env.mu.Lock()
	defer env.mu.Unlock()

	// The local side is stamped with its last mutation instant, not the
	// wall clock: an untouched ledger must compare older than a remote
	// that was written after it.
	local := snapshot.Capture(env.Store, snapshot.DefaultVersion, env.lastModified)
	cmp := snapshot.Compare(local, repaired)
	if cmp.IsLocalNewer && !input.Force {
		return &SyncDownloadOutput{
			Applied:    false,
			Comparison: cmp,
			Warnings:   result.Warnings,
		}, nil
	}

	// Back up the state we are about to overwrite.
	backupName := ""
	if env.Store.LogCount() > 0 {
		backupData, err := snapshot.Encode(local)
		if err != nil {
			return nil, errors.NewInternal(err)
		}
		backupName = fmt.Sprintf("backups/local_backup_%s.json", timestampName(env.Now()))
		if err := store.Upload(ctx, backupName, backupData); err != nil {
			return nil, errors.NewInternal(err)
		}
	}

	env.Store = snapshot.Restore(repaired)
	if err := env.persistAt(repaired.Timestamp); err != nil {
		return nil, err
	}

	stats := snapshot.Stats(repaired)
	return &SyncDownloadOutput{
		Applied:    true,
		BackupName: backupName,
		Comparison: cmp,
		Warnings:   result.Warnings,
		Stats:      &stats,
	}, nil
}

// SyncStatusOutput contains the result of the SyncStatus operation.
type SyncStatusOutput struct {
	RemoteExists bool                 `json:"remote_exists"`
	Comparison   *snapshot.Comparison `json:"comparison,omitempty"`
	LocalStats   snapshot.StatsInfo   `json:"local_stats"`
	RemoteStats  *snapshot.StatsInfo  `json:"remote_stats,omitempty"`
}

// SyncStatus compares the local ledger against the remote snapshot
// without changing either side.
func SyncStatus(ctx context.Context, env *Env) (*SyncStatusOutput, error) {
	store, err := env.requireRemote()
	if err != nil {
		return nil, err
	}

	env.mu.Lock()
	local := snapshot.Capture(env.Store, snapshot.DefaultVersion, env.lastModified)
	env.mu.Unlock()

	out := &SyncStatusOutput{LocalStats: snapshot.Stats(local)}

	data, err := store.Download(ctx, RemoteObject)
	if err != nil {
		if stderrors.Is(err, remote.ErrNotFound) {
			return out, nil
		}
		return nil, errors.NewInternal(err)
	}

	remoteSnap, err := snapshot.Decode(data)
	if err != nil {
		return nil, errors.NewValidationFailed([]string{err.Error()})
	}

	cmp := snapshot.Compare(local, remoteSnap)
	stats := snapshot.Stats(remoteSnap)
	out.RemoteExists = true
	out.Comparison = &cmp
	out.RemoteStats = &stats
	return out, nil
}
