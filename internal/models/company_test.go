package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCanTransition(t *testing.T) {
	tests := []struct {
		from, to ModerationStatus
		allowed  bool
	}{
		{ModerationPending, ModerationApproved, true},
		{ModerationPending, ModerationRejected, true},
		{ModerationRejected, ModerationApproved, true},
		{ModerationApproved, ModerationRejected, true},
		{ModerationApproved, ModerationApproved, false},
		{ModerationApproved, ModerationPending, false},
		{ModerationStatus("archived"), ModerationApproved, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			assert.Equal(t, tt.allowed, CanTransition(tt.from, tt.to))
		})
	}
}

func TestBusinessEntity_CloneDoesNotAlias(t *testing.T) {
	site := "https://acme.example"
	cat := int64(3)
	orig := BusinessEntity{
		ID:         1,
		Name:       "Acme",
		Website:    &site,
		CategoryID: &cat,
		Location:   &Location{City: "Almaty"},
	}

	clone := orig.Clone()
	*clone.Website = "https://other.example"
	*clone.CategoryID = 9
	clone.Location.City = "Astana"

	assert.Equal(t, "https://acme.example", *orig.Website)
	assert.Equal(t, int64(3), *orig.CategoryID)
	assert.Equal(t, "Almaty", orig.City())
}

func TestCountPendingAndMatch(t *testing.T) {
	entities := []BusinessEntity{
		{ID: 1, Name: "Acme Coffee", ModerationStatus: ModerationPending},
		{ID: 2, Name: "Bolt Repairs", ModerationStatus: ModerationApproved},
		{ID: 3, Name: "Cedar Spa", ModerationStatus: ModerationPending},
	}

	assert.Equal(t, 2, CountPending(entities))
	assert.True(t, entities[0].MatchesName("  coffee "))
	assert.False(t, entities[1].MatchesName("coffee"))
	assert.True(t, ModerationRejected.IsValid())
	assert.False(t, ModerationStatus("").IsValid())
}

func TestDashboardSession_IsExpired(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	s := &DashboardSession{ID: "abc", CreatedAt: now, LastActivity: now}

	assert.False(t, s.IsExpired(now.Add(10*time.Minute), 30*time.Minute))
	assert.True(t, s.IsExpired(now.Add(31*time.Minute), 30*time.Minute))

	s.UpdateActivity(now.Add(20 * time.Minute))
	assert.False(t, s.IsExpired(now.Add(31*time.Minute), 30*time.Minute))
}
