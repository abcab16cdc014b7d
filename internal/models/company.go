// internal/models/company.go
package models

import "strings"

// ModerationStatus is the review state of a company listing.
type ModerationStatus string

const (
	ModerationPending  ModerationStatus = "pending"
	ModerationApproved ModerationStatus = "approved"
	ModerationRejected ModerationStatus = "rejected"
)

// IsValid reports whether s is one of the known moderation states.
func (s ModerationStatus) IsValid() bool {
	switch s {
	case ModerationPending, ModerationApproved, ModerationRejected:
		return true
	}
	return false
}

// moderationTransitions lists the allowed status changes. Re-applying the current status is not a transition.
var moderationTransitions = map[ModerationStatus]map[ModerationStatus]bool{
	ModerationPending: {
		ModerationApproved: true,
		ModerationRejected: true,
	},
	ModerationApproved: {
		ModerationRejected: true,
	},
	ModerationRejected: {
		ModerationApproved: true,
	},
}

// CanTransition reports whether a company may move from one moderation status to another.
func CanTransition(from, to ModerationStatus) bool {
	return moderationTransitions[from][to]
}

// Location is the main address of a company.
type Location struct {
	Address string `json:"address"`
	City    string `json:"city"`
	Region  string `json:"region,omitempty"`
	Zipcode string `json:"zipcode,omitempty"`
}

// BusinessEntity is a company listing as shown on the dashboard.
type BusinessEntity struct {
	ID               int64            `json:"id"`
	Name             string           `json:"name"`
	Description      string           `json:"description"`
	Phone            string           `json:"phone"`
	Email            string           `json:"email"`
	Website          *string          `json:"website,omitempty"`
	CategoryID       *int64           `json:"categoryId,omitempty"`
	ModerationStatus ModerationStatus `json:"moderationStatus"`
	Location         *Location        `json:"location,omitempty"`
}

// City returns the location city or an empty string.
func (e BusinessEntity) City() string {
	if e.Location == nil {
		return ""
	}
	return e.Location.City
}

// IsPending reports whether the company awaits moderation.
func (e BusinessEntity) IsPending() bool {
	return e.ModerationStatus == ModerationPending
}

// MatchesName performs a case-insensitive substring match on the company name.
func (e BusinessEntity) MatchesName(query string) bool {
	return strings.Contains(strings.ToLower(e.Name), strings.ToLower(strings.TrimSpace(query)))
}

// Clone returns a deep copy so callers can mutate it without aliasing snapshot data.
func (e BusinessEntity) Clone() BusinessEntity {
	out := e
	if e.Website != nil {
		w := *e.Website
		out.Website = &w
	}
	if e.CategoryID != nil {
		c := *e.CategoryID
		out.CategoryID = &c
	}
	if e.Location != nil {
		l := *e.Location
		out.Location = &l
	}
	return out
}

// CountPending returns the number of companies awaiting moderation.
func CountPending(entities []BusinessEntity) int {
	n := 0
	for _, e := range entities {
		if e.IsPending() {
			n++
		}
	}
	return n
}
