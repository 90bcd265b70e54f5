package http

import (
	"context"
	"net/http"
	"slices"

	"github.com/dfryer1193/pagebot/pages/domain"
	"github.com/gin-gonic/gin"
	"github.com/google/go-github/v75/github"
	"github.com/rs/zerolog/log"
)

// MarkerAuditor is the part of application.EditService the webhook needs.
type MarkerAuditor interface {
	AuditMarkers(ctx context.Context, page string) domain.AuditResult
	IsAutomated(message string) bool
	Pages() domain.PageAllowList
}

// WebhookHandler audits pages touched by pushes that did not come from the bot, so a hand edit
// that drops an editable marker is noticed before the next automated edit fails on it.
type WebhookHandler struct {
	webhookSecret []byte
	branch        string
	auditor       MarkerAuditor
}

// NewWebhookHandler creates a WebhookHandler. An empty branch means the repository's default branch,
// as reported in each push payload.
func NewWebhookHandler(secret string, branch string, auditor MarkerAuditor) *WebhookHandler {
	return &WebhookHandler{
		webhookSecret: []byte(secret),
		branch:        branch,
		auditor:       auditor,
	}
}

func (h *WebhookHandler) RegisterRoutes(r gin.IRouter) {
	r.POST("/webhook/git", h.HandleGitWebhook)
}

func (h *WebhookHandler) HandleGitWebhook(c *gin.Context) {
	payload, err := github.ValidatePayload(c.Request, h.webhookSecret)
	if err != nil {
		log.Warn().Err(err).Msg("Rejected webhook payload")
		c.String(http.StatusBadRequest, "Invalid payload")
		return
	}

	event, err := github.ParseWebHook(github.WebHookType(c.Request), payload)
	if err != nil {
		c.String(http.StatusBadRequest, "Invalid event")
		return
	}

	switch evt := event.(type) {
	case *github.PushEvent:
		c.JSON(http.StatusOK, h.handlePushEvent(c.Request.Context(), evt))
	default:
		c.Status(http.StatusNoContent)
	}
}

func (h *WebhookHandler) handlePushEvent(ctx context.Context, evt *github.PushEvent) []domain.AuditResult {
	branch := h.branch
	if branch == "" {
		branch = evt.GetRepo().GetDefaultBranch()
	}
	if evt.GetRef() != "refs/heads/"+branch {
		log.Debug().Str("ref", evt.GetRef()).Msg("Ignoring push to another branch")
		return []domain.AuditResult{}
	}

	results := []domain.AuditResult{}
	for _, page := range h.touchedPages(evt) {
		result := h.auditor.AuditMarkers(ctx, string(page))
		if !result.Success() {
			log.Error().
				Str("page", string(page)).
				Str("error", result.Failure.Reason).
				Msg("Failed to audit page after push")
		} else if len(result.Missing) > 0 {
			log.Warn().
				Str("page", string(page)).
				Str("head", evt.GetAfter()).
				Strs("missing", categoryNames(result.Missing)).
				Msg("Push removed editable markers")
		}
		results = append(results, result)
	}
	return results
}

// touchedPages lists allow-listed pages whose document was added or modified by a human commit.
func (h *WebhookHandler) touchedPages(evt *github.PushEvent) []domain.PageID {
	allowed := h.auditor.Pages()

	var pages []domain.PageID
	for _, commit := range evt.Commits {
		if h.auditor.IsAutomated(commit.GetMessage()) {
			continue
		}
		for _, path := range slices.Concat(commit.Added, commit.Modified) {
			page, ok := domain.PageFromPath(path)
			if !ok || !slices.Contains(allowed, page) || slices.Contains(pages, page) {
				continue
			}
			pages = append(pages, page)
		}
	}
	return pages
}

func categoryNames(categories []domain.Category) []string {
	names := make([]string, len(categories))
	for i, c := range categories {
		names[i] = string(c)
	}
	return names
}
