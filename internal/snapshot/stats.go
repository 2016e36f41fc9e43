package snapshot

import (
	"encoding/json"

	"github.com/dustin/go-humanize"
)

// StatsInfo describes a snapshot's contents and approximate encoded size.
type StatsInfo struct {
	Logs       int    `json:"logs"`
	Todos      int    `json:"todos"`
	Categories int    `json:"categories"`
	Scopes     int    `json:"scopes"`
	Goals      int    `json:"goals"`
	TotalSize  string `json:"totalSize"`
}

// Stats computes entity counts plus the humanized JSON size of a snapshot.
func Stats(snap *Snapshot) StatsInfo {
	info := StatsInfo{TotalSize: "0 B"}
	if snap == nil {
		return info
	}
	info.Logs = len(snap.Logs)
	info.Todos = len(snap.Todos)
	info.Categories = len(snap.Categories)
	info.Scopes = len(snap.Scopes)
	info.Goals = len(snap.Goals)
	if data, err := json.Marshal(snap); err == nil {
		info.TotalSize = humanize.Bytes(uint64(len(data)))
	}
	return info
}
