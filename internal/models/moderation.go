// internal/models/moderation.go
package models

import "time"

// ModerationRecord is an audit row written for every moderation decision or automatic check.
type ModerationRecord struct {
	ID              int64            `json:"id"`
	CompanyID       int64            `json:"companyId"`
	Status          ModerationStatus `json:"status"`
	ModeratorID     *int64           `json:"moderatorId,omitempty"`
	AutoCheckPassed *bool            `json:"autoCheckPassed,omitempty"`
	Notes           string           `json:"notes,omitempty"`
	CreatedAt       time.Time        `json:"createdAt"`
}

// AutoCheckResult is the outcome of the automatic pre-moderation checks.
type AutoCheckResult struct {
	HasRequiredFields bool     `json:"hasRequiredFields"`
	WebsiteValid      bool     `json:"websiteValid"`
	BannedWordsClean  bool     `json:"bannedWordsClean"`
	NotDuplicate      bool     `json:"notDuplicate"`
	Issues            []string `json:"issues,omitempty"`
}

// Passed reports whether every check succeeded.
func (r AutoCheckResult) Passed() bool {
	return r.HasRequiredFields && r.WebsiteValid && r.BannedWordsClean && r.NotDuplicate
}

// ModerationCounts summarises the moderation queue.
type ModerationCounts struct {
	Pending  int `json:"pending"`
	Approved int `json:"approved"`
	Rejected int `json:"rejected"`
}
