package application

import "testing"

func TestFormatCommitMessage(t *testing.T) {
	tests := []struct {
		name    string
		ctype   string
		scope   string
		subject string
		body    string
		footer  string
		want    string
	}{
		{
			name:    "all parts",
			ctype:   "optimize",
			scope:   "executive-edge",
			subject: "update headline",
			body:    "From: a\nTo: b",
			footer:  "Automated by CLAWDBOT",
			want:    "optimize(executive-edge): update headline\n\nFrom: a\nTo: b\n\nAutomated by CLAWDBOT",
		},
		{
			name:    "no body",
			ctype:   "rollback",
			scope:   "reboot",
			subject: "revert to abcdef12",
			footer:  "Automated by CLAWDBOT",
			want:    "rollback(reboot): revert to abcdef12\n\nAutomated by CLAWDBOT",
		},
		{
			name:    "no scope or footer",
			ctype:   "chore",
			subject: "tidy",
			want:    "chore: tidy",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := formatCommitMessage(tt.ctype, tt.scope, tt.subject, tt.body, tt.footer)
			if got != tt.want {
				t.Errorf("formatCommitMessage() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestUpdateCommitMessage(t *testing.T) {
	got := updateCommitMessage("executive-edge", "headline", "Old Headline", "Unlock Peak Performance", DefaultAttribution)
	want := "optimize(executive-edge): update headline\n\nFrom: Old Headline\nTo: Unlock Peak Performance\n\nAutomated by CLAWDBOT"
	if got != want {
		t.Errorf("updateCommitMessage() = %q, want %q", got, want)
	}
}

func TestRollbackCommitMessage(t *testing.T) {
	got := rollbackCommitMessage("90-day", "0123456789abcdef0123456789abcdef01234567", DefaultAttribution)
	want := "rollback(90-day): revert to 01234567\n\nAutomated by CLAWDBOT"
	if got != want {
		t.Errorf("rollbackCommitMessage() = %q, want %q", got, want)
	}
}

func TestIsBotCommit(t *testing.T) {
	if !isBotCommit("optimize(reboot): update cta\n\nFrom: a\nTo: b\n\nAutomated by CLAWDBOT", DefaultAttribution) {
		t.Error("expected bot commit")
	}
	if isBotCommit("Fix typo in footer", DefaultAttribution) {
		t.Error("did not expect bot commit")
	}
	if isBotCommit("anything", "") {
		t.Error("empty attribution must not match")
	}
}
