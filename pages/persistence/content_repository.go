package persistence

import (
	"context"
	"crypto/sha1"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"iter"
	"strconv"
	"strings"
	"time"

	"github.com/dfryer1193/pagebot/pages/domain"
	"github.com/dfryer1193/pagebot/shared/db"
)

var _ domain.ContentRepository = (*SQLiteContentRepository)(nil)

// historyBatchSize is how many revisions are read per query while listing history.
const historyBatchSize = 50

// SQLiteContentRepository implements domain.ContentRepository on a local SQLite database.
// Fingerprints are git blob SHAs of the file content, so a write conditioned on a stale read fails
// exactly as it would against GitHub.
type SQLiteContentRepository struct {
	db      *sql.DB
	baseURL string
	now     func() time.Time
}

// NewContentRepository creates a SQLiteContentRepository. baseURL, when set, prefixes commit permalinks.
func NewContentRepository(db *sql.DB, baseURL string) *SQLiteContentRepository {
	return &SQLiteContentRepository{
		db:      db,
		baseURL: strings.TrimSuffix(baseURL, "/"),
		now:     func() time.Time { return time.Now().UTC() },
	}
}

const getFileQuery = `
	SELECT content, sha FROM files WHERE path = ?
`

// ReadFile returns the current content and fingerprint of path.
func (r *SQLiteContentRepository) ReadFile(ctx context.Context, path string) (*domain.Document, error) {
	var content, sha string
	err := r.db.QueryRowContext(ctx, getFileQuery, path).Scan(&content, &sha)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", domain.ErrNotFound, path)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read %s: %w", domain.ErrTransport, path, err)
	}

	return &domain.Document{
		Path:        path,
		Content:     content,
		Fingerprint: domain.Fingerprint(sha),
	}, nil
}

const getRevisionQuery = `
	SELECT content FROM revisions
	WHERE path = ? AND substr(commit_sha, 1, ?) = ?
	ORDER BY seq DESC
	LIMIT 2
`

// ReadFileAtRevision returns the content of path as of a commit. revision may be abbreviated as
// long as it is unambiguous.
func (r *SQLiteContentRepository) ReadFileAtRevision(ctx context.Context, path string, revision string) (string, error) {
	if revision == "" {
		return "", fmt.Errorf("%w: %s at empty revision", domain.ErrNotFound, path)
	}

	rows, err := r.db.QueryContext(ctx, getRevisionQuery, path, len(revision), revision)
	if err != nil {
		return "", fmt.Errorf("%w: failed to read %s at %s: %w", domain.ErrTransport, path, revision, err)
	}
	defer rows.Close()

	var matches []string
	for rows.Next() {
		var content string
		if err := rows.Scan(&content); err != nil {
			return "", fmt.Errorf("%w: failed to scan revision: %w", domain.ErrTransport, err)
		}
		matches = append(matches, content)
	}
	if err := rows.Err(); err != nil {
		return "", fmt.Errorf("%w: error iterating revisions: %w", domain.ErrTransport, err)
	}

	switch len(matches) {
	case 0:
		return "", fmt.Errorf("%w: %s at %s", domain.ErrNotFound, path, revision)
	case 1:
		return matches[0], nil
	default:
		return "", fmt.Errorf("%w: revision %s is ambiguous", domain.ErrInvalidInput, revision)
	}
}

const updateFileQuery = `
	UPDATE files SET content = ?, sha = ?, updated_at = ?
	WHERE path = ? AND sha = ?
`

// WriteFile replaces the content of path if its fingerprint is still expected, recording one revision.
func (r *SQLiteContentRepository) WriteFile(ctx context.Context, path string, content string, expected domain.Fingerprint, message string) (domain.CommitReference, error) {
	var ref domain.CommitReference

	err := db.RunInTransaction(ctx, r.db, func(txCtx context.Context) error {
		executor := db.GetExecutor(txCtx, r.db)

		var current string
		err := executor.QueryRowContext(txCtx, getFileQuery, path).Scan(new(string), &current)
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("%w: %s", domain.ErrNotFound, path)
		}
		if err != nil {
			return fmt.Errorf("%w: failed to read %s: %w", domain.ErrTransport, path, err)
		}
		if current != string(expected) {
			return fmt.Errorf("%w: %s is at %s, expected %s", domain.ErrConflict, path, current, expected)
		}

		now := r.now()
		blob := blobSHA(content)
		res, err := executor.ExecContext(txCtx, updateFileQuery, content, blob, now, path, current)
		if err != nil {
			return fmt.Errorf("%w: failed to update %s: %w", domain.ErrTransport, path, err)
		}
		if n, err := res.RowsAffected(); err == nil && n != 1 {
			return fmt.Errorf("%w: %s changed during write", domain.ErrConflict, path)
		}

		ref, err = r.recordRevision(txCtx, executor, path, content, blob, message, now)
		return err
	})
	if err != nil {
		return domain.CommitReference{}, err
	}

	return ref, nil
}

const insertFileQuery = `
	INSERT INTO files (path, content, sha, updated_at) VALUES (?, ?, ?, ?)
`

// Seed creates path with its first revision. It fails if the file already exists.
func (r *SQLiteContentRepository) Seed(ctx context.Context, path string, content string, message string) (domain.CommitReference, error) {
	var ref domain.CommitReference

	err := db.RunInTransaction(ctx, r.db, func(txCtx context.Context) error {
		executor := db.GetExecutor(txCtx, r.db)

		var exists int
		err := executor.QueryRowContext(txCtx, "SELECT COUNT(*) FROM files WHERE path = ?", path).Scan(&exists)
		if err != nil {
			return fmt.Errorf("%w: failed to check %s: %w", domain.ErrTransport, path, err)
		}
		if exists > 0 {
			return fmt.Errorf("%w: %s already exists", domain.ErrConflict, path)
		}

		now := r.now()
		blob := blobSHA(content)
		if _, err := executor.ExecContext(txCtx, insertFileQuery, path, content, blob, now); err != nil {
			return fmt.Errorf("%w: failed to create %s: %w", domain.ErrTransport, path, err)
		}

		ref, err = r.recordRevision(txCtx, executor, path, content, blob, message, now)
		return err
	})
	if err != nil {
		return domain.CommitReference{}, err
	}

	return ref, nil
}

const (
	latestCommitQuery = `
		SELECT commit_sha FROM revisions WHERE path = ? ORDER BY seq DESC LIMIT 1
	`
	insertRevisionQuery = `
		INSERT INTO revisions (commit_sha, path, content, blob_sha, message, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`
)

func (r *SQLiteContentRepository) recordRevision(ctx context.Context, executor db.Executor, path, content, blob, message string, now time.Time) (domain.CommitReference, error) {
	var parent string
	err := executor.QueryRowContext(ctx, latestCommitQuery, path).Scan(&parent)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return domain.CommitReference{}, fmt.Errorf("%w: failed to read parent commit: %w", domain.ErrTransport, err)
	}

	sha := commitSHA(parent, path, blob, message, now)
	if _, err := executor.ExecContext(ctx, insertRevisionQuery, sha, path, content, blob, message, now); err != nil {
		return domain.CommitReference{}, fmt.Errorf("%w: failed to record revision: %w", domain.ErrTransport, err)
	}

	return domain.CommitReference{SHA: sha, URL: r.permalink(sha)}, nil
}

const listRevisionsQuery = `
	SELECT seq, commit_sha, message, created_at FROM revisions
	WHERE path = ? AND seq < ?
	ORDER BY seq DESC
	LIMIT ?
`

// ListCommits yields revisions of path newest first. Revisions are fetched in batches keyed on
// sequence number, so no rows are held open while the caller consumes entries.
func (r *SQLiteContentRepository) ListCommits(ctx context.Context, path string, limit int) iter.Seq2[domain.HistoryEntry, error] {
	return func(yield func(domain.HistoryEntry, error) bool) {
		remaining := limit
		before := int64(1<<63 - 1)

		for remaining > 0 {
			batch, last, err := r.listBatch(ctx, path, before, min(remaining, historyBatchSize))
			if err != nil {
				yield(domain.HistoryEntry{}, err)
				return
			}

			for _, entry := range batch {
				if !yield(entry, nil) {
					return
				}
			}

			if len(batch) < min(remaining, historyBatchSize) {
				return
			}
			remaining -= len(batch)
			before = last
		}
	}
}

func (r *SQLiteContentRepository) listBatch(ctx context.Context, path string, before int64, size int) ([]domain.HistoryEntry, int64, error) {
	rows, err := r.db.QueryContext(ctx, listRevisionsQuery, path, before, size)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: failed to list revisions: %w", domain.ErrTransport, err)
	}
	defer rows.Close()

	var (
		entries []domain.HistoryEntry
		last    int64
	)
	for rows.Next() {
		var (
			seq       int64
			sha       string
			message   string
			createdAt time.Time
		)
		if err := rows.Scan(&seq, &sha, &message, &createdAt); err != nil {
			return nil, 0, fmt.Errorf("%w: failed to scan revision: %w", domain.ErrTransport, err)
		}

		subject, _, _ := strings.Cut(message, "\n")
		entries = append(entries, domain.HistoryEntry{
			SHA:     domain.ShortSHA(sha),
			Message: subject,
			Date:    createdAt,
			URL:     r.permalink(sha),
		})
		last = seq
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("%w: error iterating revisions: %w", domain.ErrTransport, err)
	}

	return entries, last, nil
}

func (r *SQLiteContentRepository) permalink(sha string) string {
	if r.baseURL == "" {
		return ""
	}
	return r.baseURL + "/commit/" + sha
}

// blobSHA hashes content the way git hashes a blob object.
func blobSHA(content string) string {
	h := sha1.New()
	h.Write([]byte("blob " + strconv.Itoa(len(content)) + "\x00"))
	h.Write([]byte(content))
	return hex.EncodeToString(h.Sum(nil))
}

func commitSHA(parent, path, blob, message string, at time.Time) string {
	h := sha1.New()
	for _, part := range []string{parent, path, blob, message, at.Format(time.RFC3339Nano)} {
		h.Write([]byte(part))
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))
}
