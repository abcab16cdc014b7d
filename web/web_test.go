package web

import (
	"context"
	"testing"

	"business-directory/internal/panel"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const snapshot = `[
	{"id":1,"name":"Acme","description":"Coffee","phone":"+7 701 555 0101","email":"a@acme.example","website":"https://acme.example","moderationStatus":"pending","location":{"address":"1 Main","city":"Almaty"}},
	{"id":2,"name":"Bolt","description":"Repairs","phone":"+7 701 555 0102","email":"b@bolt.example","moderationStatus":"approved"}
]`

func TestTemplates_EverySectionRenders(t *testing.T) {
	set, err := Templates()
	require.NoError(t, err)

	r, err := panel.NewRouter([]byte(snapshot), panel.Options{Templates: set})
	require.NoError(t, err)
	require.True(t, r.SelectEntity(1))

	for _, s := range panel.AllSections {
		t.Run(string(s), func(t *testing.T) {
			outcome := r.LoadSection(context.Background(), string(s), s.Title())

			require.Equal(t, panel.OutcomeLoaded, outcome)
			main := string(r.Panels().Main)
			assert.NotContains(t, main, "Failed to load")
			if s == panel.SectionTelegram {
				assert.Contains(t, main, "under development")
			} else {
				assert.Contains(t, main, s.Title())
			}
			assert.NotEmpty(t, r.Panels().Bottom)
		})
	}
}

func TestTemplates_EntityFragments(t *testing.T) {
	set, err := Templates()
	require.NoError(t, err)
	r, err := panel.NewRouter([]byte(snapshot), panel.Options{Templates: set})
	require.NoError(t, err)

	require.True(t, r.SelectEntity(1))
	detail := string(r.Panels().Right)
	assert.Contains(t, detail, "Acme")
	assert.Contains(t, detail, "https://acme.example")
	assert.Contains(t, detail, "companies/1/approve")

	id := int64(2)
	require.True(t, r.OpenEntityForm(&id))
	form := string(r.Panels().Right)
	assert.Contains(t, form, `value="Bolt"`)
	assert.Contains(t, form, `name="id" value="2"`)
}

func TestTemplates_PageLookup(t *testing.T) {
	set, err := Templates()
	require.NoError(t, err)
	assert.True(t, set.Has("dashboard-page"))
	assert.True(t, set.Has("bottom-panel-calendar-template"))
}
