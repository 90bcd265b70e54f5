package application

import (
	"context"
	"fmt"
	"iter"
	"sync"
	"time"

	"github.com/dfryer1193/pagebot/pages/domain"
)

type fakeRevision struct {
	sha     string
	content string
	message string
	date    time.Time
}

// fakeStore is an in-memory ContentRepository with compare-and-swap writes.
type fakeStore struct {
	mu    sync.Mutex
	files map[string][]fakeRevision
	seq   int
	calls int

	// beforeWrite runs inside WriteFile before the fingerprint check, to simulate a concurrent writer.
	beforeWrite func()
	readErr     error
}

func newFakeStore() *fakeStore {
	return &fakeStore{files: make(map[string][]fakeRevision)}
}

func (f *fakeStore) seed(path, content string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.commitLocked(path, content, "initial commit")
}

func (f *fakeStore) commitLocked(path, content, message string) string {
	f.seq++
	sha := fmt.Sprintf("%08d%032x", f.seq, f.seq)
	f.files[path] = append(f.files[path], fakeRevision{
		sha:     sha,
		content: content,
		message: message,
		date:    time.Date(2026, 1, 1, 0, 0, f.seq, 0, time.UTC),
	})
	return sha
}

func (f *fakeStore) head(path string) (fakeRevision, bool) {
	revs := f.files[path]
	if len(revs) == 0 {
		return fakeRevision{}, false
	}
	return revs[len(revs)-1], true
}

func (f *fakeStore) content(path string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	rev, _ := f.head(path)
	return rev.content
}

func (f *fakeStore) revisions(path string) []fakeRevision {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]fakeRevision(nil), f.files[path]...)
}

func (f *fakeStore) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func (f *fakeStore) ReadFile(ctx context.Context, path string) (*domain.Document, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++

	if f.readErr != nil {
		return nil, f.readErr
	}
	rev, ok := f.head(path)
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrNotFound, path)
	}
	return &domain.Document{Path: path, Content: rev.content, Fingerprint: domain.Fingerprint(rev.sha)}, nil
}

func (f *fakeStore) ReadFileAtRevision(ctx context.Context, path string, revision string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++

	for _, rev := range f.files[path] {
		if rev.sha == revision || domain.ShortSHA(rev.sha) == revision {
			return rev.content, nil
		}
	}
	return "", fmt.Errorf("%w: %s at %s", domain.ErrNotFound, path, revision)
}

func (f *fakeStore) WriteFile(ctx context.Context, path string, content string, expected domain.Fingerprint, message string) (domain.CommitReference, error) {
	if f.beforeWrite != nil {
		f.beforeWrite()
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++

	rev, ok := f.head(path)
	if !ok {
		return domain.CommitReference{}, fmt.Errorf("%w: %s", domain.ErrNotFound, path)
	}
	if domain.Fingerprint(rev.sha) != expected {
		return domain.CommitReference{}, fmt.Errorf("%w: %s", domain.ErrConflict, path)
	}

	sha := f.commitLocked(path, content, message)
	return domain.CommitReference{SHA: sha, URL: "https://example.test/commit/" + sha}, nil
}

func (f *fakeStore) ListCommits(ctx context.Context, path string, limit int) iter.Seq2[domain.HistoryEntry, error] {
	return func(yield func(domain.HistoryEntry, error) bool) {
		f.mu.Lock()
		f.calls++
		revs := append([]fakeRevision(nil), f.files[path]...)
		f.mu.Unlock()

		for i, n := len(revs)-1, 0; i >= 0 && n < limit; i, n = i-1, n+1 {
			rev := revs[i]
			entry := domain.HistoryEntry{
				SHA:     domain.ShortSHA(rev.sha),
				Message: firstLine(rev.message),
				Date:    rev.date,
				URL:     "https://example.test/commit/" + rev.sha,
			}
			if !yield(entry, nil) {
				return
			}
		}
	}
}

func firstLine(s string) string {
	for i, r := range s {
		if r == '\n' {
			return s[:i]
		}
	}
	return s
}
