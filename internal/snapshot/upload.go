package snapshot

import "fmt"

// UploadCheck is the result of the upload-safety gate.
type UploadCheck struct {
	CanUpload bool   `json:"canUpload"`
	Reason    string `json:"reason,omitempty"`
}

// CanUpload decides whether a snapshot is safe to push to the remote. An
// invalid shape or an empty log collection is refused: a device with no
// local history must not silently overwrite a populated remote ledger.
// The reason is always stated, never a silent failure.
func CanUpload(snap *Snapshot) UploadCheck {
	if snap == nil {
		return UploadCheck{CanUpload: false, Reason: "snapshot is missing"}
	}
	if snap.Logs == nil {
		return refuse("logs")
	}
	if snap.Todos == nil {
		return refuse("todos")
	}
	if snap.Categories == nil {
		return refuse("categories")
	}
	if len(snap.Logs) == 0 {
		return UploadCheck{CanUpload: false, Reason: "empty ledger"}
	}
	return UploadCheck{CanUpload: true}
}

func refuse(field string) UploadCheck {
	return UploadCheck{
		CanUpload: false,
		Reason:    fmt.Sprintf("missing required collection: %s", field),
	}
}
