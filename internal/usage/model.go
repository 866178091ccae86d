package usage

import "time"

// Usage represents a user's plan consumption snapshot. Document counts reset
// monthly; storage bytes track what is currently held and never reset.
type Usage struct {
	Plan              string    `json:"plan"`
	DocLimit          int       `json:"docLimit"`
	DocsUsed          int       `json:"docsUsed"`
	StorageLimitBytes int64     `json:"storageLimitBytes"`
	StorageUsedBytes  int64     `json:"storageUsedBytes"`
	ResetsAt          time.Time `json:"resetsAt"`
}
