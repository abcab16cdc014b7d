package main

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"business-directory/pkg/registry"
	"business-directory/web"
)

var shippedCatalog = filepath.Join("..", "..", "..", "configs", "sections.yaml")

// ==========================
// Section catalog
// ==========================

func TestCatalogProblems_ShippedCatalog(t *testing.T) {
	catalog, err := registry.LoadCatalog(shippedCatalog)
	require.NoError(t, err)
	templates, err := web.Templates()
	require.NoError(t, err)

	assert.Empty(t, catalogProblems(catalog, templates))
}

func TestCatalogProblems(t *testing.T) {
	templates, err := web.Templates()
	require.NoError(t, err)
	catalog, err := registry.LoadCatalog(shippedCatalog)
	require.NoError(t, err)

	catalog.Sections = catalog.Sections[1:]
	catalog.Sections[0].BottomPanel = "calendar"
	catalog.Sections = append(catalog.Sections,
		registry.Section{Key: "loyalty", Title: "Loyalty", Template: "loyalty-template", BottomPanel: "stats", ImplementationStatus: registry.StatusPlanned},
	)
	for i := range catalog.Sections {
		if catalog.Sections[i].Key == "telegram" {
			catalog.Sections[i].ImplementationStatus = registry.StatusImplemented
		}
	}

	problems := catalogProblems(catalog, templates)

	assert.ElementsMatch(t, []string{
		`section "dashboard" is not in the catalog`,
		`section "companies": bottom panel "calendar", dashboard shows "stats"`,
		`section "loyalty" is unknown to the dashboard`,
		`section "telegram" is marked implemented but template "telegram-template" is missing`,
	}, problems)
}

func TestSectionsListCommand(t *testing.T) {
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"sections", "list", "--path", shippedCatalog})
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetArgs(nil)
		catalogPath = ""
	})

	require.NoError(t, rootCmd.Execute())

	assert.Contains(t, out.String(), "KEY")
	assert.Contains(t, out.String(), "Situational Center")
	assert.Contains(t, out.String(), "under-development")
}

// ==========================
// Operators
// ==========================

func TestHashPassword(t *testing.T) {
	tests := []struct {
		name     string
		email    string
		password string
		wantErr  string
	}{
		{name: "valid", email: "ops@directory.example", password: "correct horse"},
		{name: "bad email", email: "ops", password: "correct horse", wantErr: `invalid email "ops"`},
		{name: "short password", email: "ops@directory.example", password: "short", wantErr: "password must be at least 8 characters"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hash, err := hashPassword(tt.email, tt.password)
			if tt.wantErr != "" {
				assert.EqualError(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.NoError(t, bcrypt.CompareHashAndPassword(hash, []byte(tt.password)))
		})
	}
}
