package domain

import "time"

// Fingerprint identifies the exact content state of a file. Writes conditioned on a stale
// fingerprint are rejected by the store.
type Fingerprint string

// Document is one HTML file as read from the store. It is read fresh for every operation.
type Document struct {
	Path        string
	Content     string
	Fingerprint Fingerprint
}

// CommitReference identifies the revision created by a successful write.
type CommitReference struct {
	SHA string
	URL string
}

// HistoryEntry is a read-only projection of a past commit touching one document.
type HistoryEntry struct {
	SHA     string    `json:"sha"`
	Message string    `json:"message"`
	Date    time.Time `json:"date"`
	URL     string    `json:"url"`
}

const shortSHALength = 8

// ShortSHA truncates a revision id to the form used in history and rollback messages.
func ShortSHA(sha string) string {
	if len(sha) <= shortSHALength {
		return sha
	}
	return sha[:shortSHALength]
}
