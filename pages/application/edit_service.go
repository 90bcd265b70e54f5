package application

import (
	"context"
	"errors"
	"fmt"

	"github.com/dfryer1193/pagebot/pages/domain"
	"github.com/rs/zerolog/log"
)

// DefaultHistoryLimit is the number of history entries returned when the caller asks for none.
const DefaultHistoryLimit = 10

// Options configures an EditService.
type Options struct {
	Pages            domain.PageAllowList
	MarkerAttribute  string
	Attribution      string
	MaxContentLength int
}

// EditService applies guarded edits to page documents. It holds no per-call state; every operation
// re-reads the document and relies on the repository's conditional write for concurrency safety.
type EditService struct {
	repo        domain.ContentRepository
	pages       domain.PageAllowList
	sanitizer   *Sanitizer
	locator     *Locator
	attribution string
}

func NewEditService(repo domain.ContentRepository, opts Options) *EditService {
	pages := opts.Pages
	if len(pages) == 0 {
		pages = domain.DefaultPages
	}

	attribution := opts.Attribution
	if attribution == "" {
		attribution = DefaultAttribution
	}

	return &EditService{
		repo:        repo,
		pages:       pages,
		sanitizer:   NewSanitizer(opts.MaxContentLength),
		locator:     NewLocator(opts.MarkerAttribute),
		attribution: attribution,
	}
}

// UpdateElement replaces the text of one editable element on a page and commits the result.
// The write is conditioned on the fingerprint read in the same call; a concurrent change surfaces
// as a conflict failure and is not retried.
func (s *EditService) UpdateElement(ctx context.Context, page string, element string, content string) domain.EditResult {
	pageID, category, err := s.validateTarget(page, element)
	if err != nil {
		return s.failEdit("update", page, err)
	}

	safe, err := s.sanitizer.Sanitize(content, category)
	if err != nil {
		return s.failEdit("update", page, err)
	}

	path := pageID.DocumentPath()
	doc, err := s.repo.ReadFile(ctx, path)
	if err != nil {
		return s.failEdit("update", page, fmt.Errorf("could not fetch %s: %w", path, err))
	}

	updated, oldText, err := s.locator.LocateAndReplace(doc.Content, category, safe)
	if err != nil {
		return s.failEdit("update", page, fmt.Errorf("%w in %s", err, path))
	}

	message := updateCommitMessage(pageID, category, oldText, safe, s.attribution)
	ref, err := s.repo.WriteFile(ctx, path, updated, doc.Fingerprint, message)
	if err != nil {
		return s.failEdit("update", page, fmt.Errorf("could not commit: %w", err))
	}

	log.Info().
		Str("page", page).
		Str("element", element).
		Str("commit", ref.SHA).
		Msg("Updated page element")

	return domain.EditResult{
		Page:    pageID,
		Element: category,
		Old:     oldText,
		New:     safe,
		Commit:  commitLink(ref),
	}
}

// Rollback restores a page document to its content at revision, as a new commit on top of the
// current state. The restored content is trusted: it passed sanitization when it was first committed.
func (s *EditService) Rollback(ctx context.Context, page string, revision string) domain.EditResult {
	pageID, err := s.pages.Parse(page)
	if err != nil {
		return s.failEdit("rollback", page, err)
	}
	if revision == "" {
		return s.failEdit("rollback", page, fmt.Errorf("%w: revision is required", domain.ErrInvalidInput))
	}

	path := pageID.DocumentPath()
	oldContent, err := s.repo.ReadFileAtRevision(ctx, path, revision)
	if err != nil {
		return s.failEdit("rollback", page, fmt.Errorf("could not fetch old version: %w", err))
	}

	current, err := s.repo.ReadFile(ctx, path)
	if err != nil {
		return s.failEdit("rollback", page, fmt.Errorf("could not get current file: %w", err))
	}

	message := rollbackCommitMessage(pageID, revision, s.attribution)
	ref, err := s.repo.WriteFile(ctx, path, oldContent, current.Fingerprint, message)
	if err != nil {
		return s.failEdit("rollback", page, fmt.Errorf("could not commit rollback: %w", err))
	}

	log.Info().
		Str("page", page).
		Str("revision", revision).
		Str("commit", ref.SHA).
		Msg("Rolled back page")

	return domain.EditResult{
		Page:         pageID,
		RolledBackTo: revision,
		Commit:       commitLink(ref),
	}
}

// GetHistory returns up to limit recent commits touching the page document, newest first.
func (s *EditService) GetHistory(ctx context.Context, page string, limit int) domain.HistoryResult {
	pageID, err := s.pages.Parse(page)
	if err != nil {
		return s.failHistory(page, err)
	}
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}

	entries := make([]domain.HistoryEntry, 0, limit)
	for entry, err := range s.repo.ListCommits(ctx, pageID.DocumentPath(), limit) {
		if err != nil {
			return s.failHistory(page, fmt.Errorf("could not list commits: %w", err))
		}
		entries = append(entries, entry)
	}

	return domain.HistoryResult{
		Page:    pageID,
		Entries: entries,
	}
}

// Preview runs every step of UpdateElement except the commit and reports what would change.
func (s *EditService) Preview(ctx context.Context, page string, element string, content string) domain.PreviewResult {
	pageID, category, err := s.validateTarget(page, element)
	if err != nil {
		return domain.PreviewResult{Failure: domain.NewFailure(err)}
	}

	safe, err := s.sanitizer.Sanitize(content, category)
	if err != nil {
		return domain.PreviewResult{Failure: domain.NewFailure(err)}
	}

	path := pageID.DocumentPath()
	doc, err := s.repo.ReadFile(ctx, path)
	if err != nil {
		return domain.PreviewResult{Failure: domain.NewFailure(fmt.Errorf("could not fetch %s: %w", path, err))}
	}

	updated, oldText, err := s.locator.LocateAndReplace(doc.Content, category, safe)
	if err != nil {
		return domain.PreviewResult{Failure: domain.NewFailure(fmt.Errorf("%w in %s", err, path))}
	}

	return domain.PreviewResult{
		Page:        pageID,
		Element:     category,
		Old:         oldText,
		New:         safe,
		Fingerprint: doc.Fingerprint,
		Diff:        documentDiff(doc.Content, updated),
	}
}

// AuditMarkers reports which editable regions are present in the page's current document.
func (s *EditService) AuditMarkers(ctx context.Context, page string) domain.AuditResult {
	pageID, err := s.pages.Parse(page)
	if err != nil {
		return domain.AuditResult{Failure: domain.NewFailure(err)}
	}

	doc, err := s.repo.ReadFile(ctx, pageID.DocumentPath())
	if err != nil {
		return domain.AuditResult{Failure: domain.NewFailure(fmt.Errorf("could not fetch %s: %w", pageID.DocumentPath(), err))}
	}

	result := domain.AuditResult{Page: pageID}
	for _, category := range domain.Categories {
		if s.locator.Contains(doc.Content, category) {
			result.Present = append(result.Present, category)
		} else {
			result.Missing = append(result.Missing, category)
		}
	}
	return result
}

// Pages returns the allow-listed pages.
func (s *EditService) Pages() domain.PageAllowList {
	return s.pages
}

// IsAutomated reports whether a commit message was written by this service.
func (s *EditService) IsAutomated(message string) bool {
	return isBotCommit(message, s.attribution)
}

// validateTarget checks page and element independently; both must be allow-listed.
func (s *EditService) validateTarget(page, element string) (domain.PageID, domain.Category, error) {
	pageID, pageErr := s.pages.Parse(page)
	category, categoryErr := domain.ParseCategory(element)
	if err := errors.Join(pageErr, categoryErr); err != nil {
		return "", "", err
	}
	return pageID, category, nil
}

func (s *EditService) failEdit(op string, page string, err error) domain.EditResult {
	log.Warn().Err(err).Str("op", op).Str("page", page).Msg("Edit failed")
	return domain.FailedEdit(err)
}

func (s *EditService) failHistory(page string, err error) domain.HistoryResult {
	log.Warn().Err(err).Str("op", "history").Str("page", page).Msg("History lookup failed")
	return domain.HistoryResult{Failure: domain.NewFailure(err)}
}

// commitLink prefers the permalink and falls back to the commit id.
func commitLink(ref domain.CommitReference) string {
	if ref.URL != "" {
		return ref.URL
	}
	return ref.SHA
}
