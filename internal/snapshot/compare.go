package snapshot

// Comparison is the whole-snapshot last-write-wins decision. Exactly one of
// the three flags is set.
type Comparison struct {
	IsLocalNewer    bool  `json:"isLocalNewer"`
	IsRemoteNewer   bool  `json:"isRemoteNewer"`
	IsSame          bool  `json:"isSame"`
	LocalTimestamp  int64 `json:"localTimestamp"`
	RemoteTimestamp int64 `json:"remoteTimestamp"`
}

// Compare decides between two full snapshots on the single timestamp field.
// This is deliberately not a field-level merge: the newer snapshot wins in
// its entirety, and concurrent edits on the older side are discarded.
// A nil snapshot compares as timestamp zero. Ties are IsSame.
func Compare(local, remote *Snapshot) Comparison {
	var lts, rts int64
	if local != nil {
		lts = local.Timestamp
	}
	if remote != nil {
		rts = remote.Timestamp
	}
	return Comparison{
		IsLocalNewer:    lts > rts,
		IsRemoteNewer:   rts > lts,
		IsSame:          lts == rts,
		LocalTimestamp:  lts,
		RemoteTimestamp: rts,
	}
}
