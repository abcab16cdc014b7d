package registry

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const catalogYAML = `version: "1.0.0"
lastUpdated: "2026-10-01"
sections:
  - key: dashboard
    title: Situational Center
    template: dashboard-template
    bottomPanel: stats
    implementationStatus: implemented
  - key: telegram
    title: Telegram Bot
    template: telegram-template
    bottomPanel: default-stats
    implementationStatus: under-development
    tags: [integrations]
`

// ==========================
// Loading
// ==========================

func TestParseCatalog(t *testing.T) {
	c, err := ParseCatalog([]byte(catalogYAML))
	require.NoError(t, err)

	assert.Equal(t, "1.0.0", c.Version)
	assert.Equal(t, []string{"dashboard", "telegram"}, c.Keys())
	s, ok := c.Find("telegram")
	require.True(t, ok)
	assert.Equal(t, []string{"integrations"}, s.Tags)
	assert.Empty(t, c.Validate())
}

func TestParseCatalog_UnknownField(t *testing.T) {
	_, err := ParseCatalog([]byte("version: \"1\"\nsection: []\n"))
	assert.Error(t, err)
}

func TestSaveAndLoadCatalog(t *testing.T) {
	c, err := ParseCatalog([]byte(catalogYAML))
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "sections.yaml")

	require.NoError(t, SaveCatalog(path, c))
	loaded, err := LoadCatalog(path)

	require.NoError(t, err)
	assert.Equal(t, c, loaded)
}

func TestLoadCatalog_MissingFile(t *testing.T) {
	_, err := LoadCatalog(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

// ==========================
// Validation
// ==========================

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		catalog SectionCatalog
		want    []string
	}{
		{
			name:    "empty",
			catalog: SectionCatalog{},
			want:    []string{"version is required", "at least one section is required"},
		},
		{
			name: "duplicate key",
			catalog: SectionCatalog{Version: "1", Sections: []Section{
				{Key: "reports", Title: "Reports", Template: "reports-template", BottomPanel: "stats", ImplementationStatus: StatusImplemented},
				{Key: "reports", Title: "Reports", Template: "reports-template", BottomPanel: "stats", ImplementationStatus: StatusImplemented},
			}},
			want: []string{`section "reports": duplicate key`},
		},
		{
			name: "bad entry",
			catalog: SectionCatalog{Version: "1", Sections: []Section{
				{BottomPanel: "sidebar", ImplementationStatus: "done"},
			}},
			want: []string{
				"sections[0]: key is required",
				"sections[0]: title is required",
				"sections[0]: template is required",
				`sections[0]: unknown bottom panel "sidebar"`,
				`sections[0]: unknown implementation status "done"`,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.catalog.Validate())
		})
	}
}

func TestMissing(t *testing.T) {
	c, err := ParseCatalog([]byte(catalogYAML))
	require.NoError(t, err)

	assert.Equal(t, []string{"companies", "reports"}, c.Missing([]string{"reports", "dashboard", "companies"}))
	assert.Empty(t, c.Missing([]string{"telegram"}))
}
