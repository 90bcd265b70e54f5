package github

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"net/http"
	"strings"

	"github.com/dfryer1193/pagebot/pages/domain"
	"github.com/google/go-github/v75/github"
)

// maxPerPage is the largest page size the commits endpoint accepts.
const maxPerPage = 100

var _ domain.ContentRepository = (*GithubContentRepository)(nil)

// GithubContentRepository is an implementation of domain.ContentRepository that uses the GitHub contents API.
// The blob SHA GitHub reports for a file is used as its fingerprint, and GitHub rejects a PUT whose
// sha no longer matches the branch head with 409 Conflict.
type GithubContentRepository struct {
	client  *github.Client
	owner   string
	gitRepo string
	branch  string
}

// NewGithubContentRepository creates a new GithubContentRepository. An empty branch means the
// repository's default branch.
func NewGithubContentRepository(client *github.Client, owner string, gitRepo string, branch string) *GithubContentRepository {
	return &GithubContentRepository{
		client:  client,
		owner:   owner,
		gitRepo: gitRepo,
		branch:  branch,
	}
}

// ReadFile fetches the current contents and blob SHA of a file on the configured branch.
func (g *GithubContentRepository) ReadFile(ctx context.Context, path string) (*domain.Document, error) {
	op := fmt.Sprintf("getting file %s", path)
	file, err := g.getFile(ctx, op, path, g.branch)
	if err != nil {
		return nil, err
	}

	content, err := decodeContent(op, file)
	if err != nil {
		return nil, err
	}

	return &domain.Document{
		Path:        path,
		Content:     content,
		Fingerprint: domain.Fingerprint(file.GetSHA()),
	}, nil
}

// ReadFileAtRevision fetches the contents of a file at a specific ref (branch, tag, or commit SHA).
func (g *GithubContentRepository) ReadFileAtRevision(ctx context.Context, path string, revision string) (string, error) {
	op := fmt.Sprintf("getting file %s at ref %s", path, revision)
	file, err := g.getFile(ctx, op, path, revision)
	if err != nil {
		return "", err
	}
	return decodeContent(op, file)
}

// WriteFile commits new contents for path, conditioned on the file still having the expected blob SHA.
func (g *GithubContentRepository) WriteFile(ctx context.Context, path string, content string, expected domain.Fingerprint, message string) (domain.CommitReference, error) {
	op := fmt.Sprintf("updating file %s", path)
	opts := &github.RepositoryContentFileOptions{
		Message: github.Ptr(message),
		Content: []byte(content),
		SHA:     github.Ptr(string(expected)),
	}
	if g.branch != "" {
		opts.Branch = github.Ptr(g.branch)
	}

	resp, _, err := g.client.Repositories.UpdateFile(ctx, g.owner, g.gitRepo, path, opts)
	if err != nil {
		return domain.CommitReference{}, handleGithubError(op, err)
	}

	return domain.CommitReference{
		SHA: resp.Commit.GetSHA(),
		URL: resp.Commit.GetHTMLURL(),
	}, nil
}

// ListCommits yields commits touching path on the configured branch, newest first, following
// GitHub's pagination until limit entries have been produced.
func (g *GithubContentRepository) ListCommits(ctx context.Context, path string, limit int) iter.Seq2[domain.HistoryEntry, error] {
	return func(yield func(domain.HistoryEntry, error) bool) {
		if limit <= 0 {
			return
		}

		op := fmt.Sprintf("listing commits for %s", path)
		opts := &github.CommitsListOptions{
			SHA:         g.branch,
			Path:        path,
			ListOptions: github.ListOptions{PerPage: min(limit, maxPerPage)},
		}

		remaining := limit
		for {
			commits, resp, err := g.client.Repositories.ListCommits(ctx, g.owner, g.gitRepo, opts)
			if err != nil {
				yield(domain.HistoryEntry{}, handleGithubError(op, err))
				return
			}

			for _, c := range commits {
				if !yield(toHistoryEntry(c), nil) {
					return
				}
				remaining--
				if remaining == 0 {
					return
				}
			}

			if resp.NextPage == 0 {
				return
			}
			opts.Page = resp.NextPage
		}
	}
}

// GetRepoFullName returns the repository's full name (e.g., "owner/repo").
func (g *GithubContentRepository) GetRepoFullName() string {
	return fmt.Sprintf("%s/%s", g.owner, g.gitRepo)
}

// GetDefaultBranchName fetches the repository metadata and returns the name of the default branch.
func (g *GithubContentRepository) GetDefaultBranchName(ctx context.Context) (string, error) {
	op := fmt.Sprintf("getting repository info for %s/%s", g.owner, g.gitRepo)
	repo, _, err := g.client.Repositories.Get(ctx, g.owner, g.gitRepo)
	if err != nil {
		return "", handleGithubError(op, err)
	}
	return repo.GetDefaultBranch(), nil
}

func (g *GithubContentRepository) getFile(ctx context.Context, op string, path string, ref string) (*github.RepositoryContent, error) {
	fileContent, _, _, err := g.client.Repositories.GetContents(ctx, g.owner, g.gitRepo, path, &github.RepositoryContentGetOptions{
		Ref: ref,
	})
	if err != nil {
		return nil, handleGithubError(op, err)
	}

	if fileContent == nil {
		return nil, fmt.Errorf("github: %s: %s is not a file: %w", op, path, domain.ErrNotFound)
	}

	return fileContent, nil
}

func decodeContent(op string, file *github.RepositoryContent) (string, error) {
	// Files over 1MB come back without inline content.
	if file.GetEncoding() == "none" {
		return "", fmt.Errorf("github: %s: file too large for the contents API: %w", op, domain.ErrTransport)
	}

	content, err := file.GetContent()
	if err != nil {
		return "", fmt.Errorf("github: %s failed to decode content: %w: %w", op, domain.ErrTransport, err)
	}
	return content, nil
}

func toHistoryEntry(c *github.RepositoryCommit) domain.HistoryEntry {
	message, _, _ := strings.Cut(c.GetCommit().GetMessage(), "\n")
	return domain.HistoryEntry{
		SHA:     domain.ShortSHA(c.GetSHA()),
		Message: message,
		Date:    c.GetCommit().GetAuthor().GetDate().Time,
		URL:     c.GetHTMLURL(),
	}
}

// handleGithubError inspects an error from the go-github client and returns a more informative, structured error
// wrapping the matching domain sentinel.
func handleGithubError(op string, err error) error {
	if err == nil {
		return nil
	}

	var errResp *github.ErrorResponse
	if errors.As(err, &errResp) && errResp.Response != nil {
		status := errResp.Response.StatusCode
		return fmt.Errorf("github: %s failed with status %d: %s: %w", op, status, errResp.Message, sentinelForStatus(status))
	}

	return fmt.Errorf("github: %s failed: %w: %w", op, domain.ErrTransport, err)
}

func sentinelForStatus(status int) error {
	switch status {
	case http.StatusNotFound:
		return domain.ErrNotFound
	case http.StatusConflict:
		return domain.ErrConflict
	default:
		return domain.ErrTransport
	}
}
