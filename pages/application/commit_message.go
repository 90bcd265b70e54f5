package application

import (
	"strings"

	"github.com/dfryer1193/pagebot/pages/domain"
)

// DefaultAttribution is the footer that marks a commit as made by the bot.
const DefaultAttribution = "Automated by CLAWDBOT"

const (
	commitTypeOptimize = "optimize"
	commitTypeRollback = "rollback"
)

// formatCommitMessage builds
//
//	<type>(<scope>): <subject>
//
//	<body>
//
//	<footer>
//
// The body is written verbatim; an empty body is left out.
func formatCommitMessage(ctype, scope, subject, body, footer string) string {
	var sb strings.Builder

	sb.WriteString(ctype)
	if scope != "" {
		sb.WriteString("(")
		sb.WriteString(scope)
		sb.WriteString(")")
	}
	sb.WriteString(": ")
	sb.WriteString(subject)

	if body != "" {
		sb.WriteString("\n\n")
		sb.WriteString(body)
	}

	if footer != "" {
		sb.WriteString("\n\n")
		sb.WriteString(footer)
	}

	return sb.String()
}

func updateCommitMessage(page domain.PageID, category domain.Category, oldText, newText, attribution string) string {
	body := "From: " + oldText + "\nTo: " + newText
	return formatCommitMessage(commitTypeOptimize, string(page), "update "+string(category), body, attribution)
}

func rollbackCommitMessage(page domain.PageID, revision, attribution string) string {
	return formatCommitMessage(commitTypeRollback, string(page), "revert to "+domain.ShortSHA(revision), "", attribution)
}

// isBotCommit reports whether a commit message carries the bot's attribution footer.
func isBotCommit(message, attribution string) bool {
	return attribution != "" && strings.Contains(message, attribution)
}
