package panel

import (
	"testing"

	"business-directory/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestEntityForm_Validate(t *testing.T) {
	tests := []struct {
		name          string
		mutate        func(f *EntityForm)
		invalidFields []string
	}{
		{name: "complete", mutate: func(f *EntityForm) {}},
		{name: "blank name", mutate: func(f *EntityForm) { f.Name = "   " }, invalidFields: []string{"name"}},
		{
			name: "missing description and email",
			mutate: func(f *EntityForm) {
				f.Description = ""
				f.Email = ""
			},
			invalidFields: []string{"description", "email"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			form := validEntityForm()
			tt.mutate(&form)

			result := form.Validate()

			if tt.invalidFields == nil {
				assert.True(t, result.Valid, result.GetErrorMessages())
				return
			}
			assert.False(t, result.Valid)
			assert.Equal(t, tt.invalidFields, result.InvalidFields())
		})
	}
}

func TestEntityForm_RoundTrip(t *testing.T) {
	website := "https://bolt.example"
	category := int64(7)
	entity := models.BusinessEntity{
		ID:               9,
		Name:             "Bolt",
		Description:      "Repairs",
		Phone:            "+7 701 555 0102",
		Email:            "b@bolt.example",
		Website:          &website,
		CategoryID:       &category,
		ModerationStatus: models.ModerationRejected,
		Location:         &models.Location{Address: "2 Side St", City: "Astana"},
	}

	form := FormFromEntity(entity)
	rebuilt := form.Entity(*form.ID, entity.ModerationStatus)

	assert.Equal(t, entity, rebuilt)
	rebuilt.Location.City = "Almaty"
	assert.Equal(t, "Astana", entity.Location.City)
}
