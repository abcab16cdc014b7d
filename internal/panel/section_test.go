package panel

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseSection(t *testing.T) {
	for _, s := range AllSections {
		parsed, ok := ParseSection(string(s))
		assert.True(t, ok, s)
		assert.Equal(t, s, parsed)
		assert.NotEmpty(t, s.Title())
	}

	_, ok := ParseSection("unknown-section")
	assert.False(t, ok)
	assert.Equal(t, "unknown-section", Section("unknown-section").Title())
}

func TestBottomPanelFor(t *testing.T) {
	tests := []struct {
		section    Section
		expectKind BottomPanelKind
		templateID string
	}{
		{SectionBookings, BottomCalendar, "bottom-panel-calendar-template"},
		{SectionNewBookings, BottomCalendar, "bottom-panel-calendar-template"},
		{SectionSchedule, BottomCalendar, "bottom-panel-calendar-template"},
		{SectionDashboard, BottomStats, "bottom-panel-stats-template"},
		{SectionCompanies, BottomStats, "bottom-panel-stats-template"},
		{SectionAnalytics, BottomDefaultStats, "bottom-panel-stats-template"},
		{Section("unknown"), BottomDefaultStats, "bottom-panel-stats-template"},
	}

	for _, tt := range tests {
		t.Run(string(tt.section), func(t *testing.T) {
			kind := BottomPanelFor(tt.section)
			assert.Equal(t, tt.expectKind, kind)
			assert.Equal(t, tt.templateID, kind.TemplateID())
		})
	}
}

func TestSectionTemplateID(t *testing.T) {
	assert.Equal(t, "new-bookings-template", SectionNewBookings.TemplateID())
}
