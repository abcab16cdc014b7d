package directory

import (
	"context"
	"errors"
	"testing"

	"business-directory/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubNames map[string]int64

func (s stubNames) FindIDByName(_ context.Context, name string) (int64, bool, error) {
	if name == "explode" {
		return 0, false, errors.New("db down")
	}
	id, ok := s[name]
	return id, ok, nil
}

func strPtr(s string) *string { return &s }

func TestAutoChecker_Check(t *testing.T) {
	complete := models.BusinessEntity{
		Name:        "Acme",
		Description: "Plumbing services",
		Phone:       "+7 701 555 0101",
		Email:       "info@acme.example",
	}

	tests := []struct {
		name       string
		mutate     func(e *models.BusinessEntity)
		wantPassed bool
		wantIssues []string
	}{
		{
			name:       "complete company passes",
			mutate:     func(e *models.BusinessEntity) {},
			wantPassed: true,
		},
		{
			name:       "missing fields",
			mutate:     func(e *models.BusinessEntity) { e.Phone = " "; e.Email = "" },
			wantIssues: []string{"missing email", "missing phone"},
		},
		{
			name:       "invalid website",
			mutate:     func(e *models.BusinessEntity) { e.Website = strPtr("acme dot com") },
			wantIssues: []string{"invalid website"},
		},
		{
			name:       "valid website",
			mutate:     func(e *models.BusinessEntity) { e.Website = strPtr("https://acme.example") },
			wantPassed: true,
		},
		{
			name:       "banned word",
			mutate:     func(e *models.BusinessEntity) { e.Description = "Cheap CASINO chips" },
			wantIssues: []string{`banned word "casino"`},
		},
		{
			name:       "duplicate name",
			mutate:     func(e *models.BusinessEntity) { e.Name = "Bolt Repairs" },
			wantIssues: []string{"duplicate of company 2"},
		},
		{
			name:       "editing itself is not a duplicate",
			mutate:     func(e *models.BusinessEntity) { e.ID = 2; e.Name = "Bolt Repairs" },
			wantPassed: true,
		},
	}

	checker := NewAutoChecker(stubNames{"Bolt Repairs": 2}, []string{" Casino ", ""})
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := complete
			tt.mutate(&e)

			res, err := checker.Check(context.Background(), e)

			require.NoError(t, err)
			assert.Equal(t, tt.wantPassed, res.Passed())
			assert.Equal(t, tt.wantIssues, res.Issues)
		})
	}
}

func TestAutoChecker_LookupFailure(t *testing.T) {
	checker := NewAutoChecker(stubNames{}, nil)

	_, err := checker.Check(context.Background(), models.BusinessEntity{Name: "explode"})

	assert.Error(t, err)
}
