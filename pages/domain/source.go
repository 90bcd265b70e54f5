package domain

import (
	"context"
	"iter"
)

// ContentRepository reads and conditionally writes files in the site repository.
// Implementations must reject a WriteFile whose expected fingerprint differs from the current one
// with ErrConflict; this is the only concurrency control in the system.
type ContentRepository interface {
	ReadFile(ctx context.Context, path string) (*Document, error)
	ReadFileAtRevision(ctx context.Context, path string, revision string) (string, error)
	WriteFile(ctx context.Context, path string, content string, expected Fingerprint, message string) (CommitReference, error)

	// ListCommits yields commits touching path, most recent first, stopping after limit entries.
	ListCommits(ctx context.Context, path string, limit int) iter.Seq2[HistoryEntry, error]
}
