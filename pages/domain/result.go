package domain

// Failure is the reason an operation did not complete.
type Failure struct {
	Kind   FailureKind `json:"kind"`
	Reason string      `json:"error"`
}

// NewFailure converts err into a failure record.
func NewFailure(err error) *Failure {
	return &Failure{
		Kind:   KindOf(err),
		Reason: err.Error(),
	}
}

// EditResult is the outcome of an update or rollback. Exactly one of the success fields or Failure is set.
type EditResult struct {
	Page         PageID   `json:"page,omitempty"`
	Element      Category `json:"element,omitempty"`
	Old          string   `json:"old,omitempty"`
	New          string   `json:"new,omitempty"`
	RolledBackTo string   `json:"rolled_back_to,omitempty"`
	Commit       string   `json:"commit,omitempty"`
	Failure      *Failure `json:"failure,omitempty"`
}

// Success reports whether the operation committed.
func (r EditResult) Success() bool {
	return r.Failure == nil
}

// FailedEdit builds a failure record for err.
func FailedEdit(err error) EditResult {
	return EditResult{Failure: NewFailure(err)}
}

// HistoryResult is the outcome of a history lookup.
type HistoryResult struct {
	Page    PageID         `json:"page,omitempty"`
	Entries []HistoryEntry `json:"entries,omitempty"`
	Failure *Failure       `json:"failure,omitempty"`
}

func (r HistoryResult) Success() bool {
	return r.Failure == nil
}

// PreviewResult describes an update that would be committed, without committing it.
type PreviewResult struct {
	Page        PageID      `json:"page,omitempty"`
	Element     Category    `json:"element,omitempty"`
	Old         string      `json:"old,omitempty"`
	New         string      `json:"new,omitempty"`
	Fingerprint Fingerprint `json:"fingerprint,omitempty"`
	Diff        string      `json:"diff,omitempty"`
	Failure     *Failure    `json:"failure,omitempty"`
}

func (r PreviewResult) Success() bool {
	return r.Failure == nil
}

// AuditResult lists which editable regions a page currently exposes.
type AuditResult struct {
	Page    PageID     `json:"page,omitempty"`
	Present []Category `json:"present,omitempty"`
	Missing []Category `json:"missing,omitempty"`
	Failure *Failure   `json:"failure,omitempty"`
}

func (r AuditResult) Success() bool {
	return r.Failure == nil
}
