package panel

import (
	"strings"

	"business-directory/internal/common/validation"
	"business-directory/internal/models"
)

// EntityForm is a submitted create or edit form. ID is nil for new companies.
type EntityForm struct {
	ID          *int64           `json:"id,omitempty"`
	Name        string           `json:"name"`
	Description string           `json:"description"`
	Phone       string           `json:"phone"`
	Email       string           `json:"email"`
	Website     string           `json:"website,omitempty"`
	CategoryID  *int64           `json:"categoryId,omitempty"`
	Location    *models.Location `json:"location,omitempty"`
}

// FormState tracks the form shown in the right panel.
type FormState struct {
	Open      bool
	EditingID *int64
	Invalid   bool
	Errors    []string
	Values    EntityForm
}

// FormFromEntity pre-fills an edit form.
func FormFromEntity(e models.BusinessEntity) EntityForm {
	id := e.ID
	f := EntityForm{
		ID:          &id,
		Name:        e.Name,
		Description: e.Description,
		Phone:       e.Phone,
		Email:       e.Email,
		CategoryID:  e.CategoryID,
	}
	if e.Website != nil {
		f.Website = *e.Website
	}
	if e.Location != nil {
		loc := *e.Location
		f.Location = &loc
	}
	return f
}

// document builds the value checked against the entity form schema. Empty fields are left out so required checks fire.
func (f EntityForm) document() map[string]interface{} {
	doc := map[string]interface{}{}
	put := func(key, value string) {
		if v := strings.TrimSpace(value); v != "" {
			doc[key] = value
		}
	}
	put("name", f.Name)
	put("description", f.Description)
	put("phone", f.Phone)
	put("email", f.Email)
	put("website", f.Website)
	if f.ID != nil {
		doc["id"] = *f.ID
	}
	if f.CategoryID != nil {
		doc["categoryId"] = *f.CategoryID
	}
	if f.Location != nil {
		doc["location"] = map[string]interface{}{
			"address": f.Location.Address,
			"city":    f.Location.City,
			"region":  f.Location.Region,
			"zipcode": f.Location.Zipcode,
		}
	}
	return doc
}

// Validate runs the required-field and format checks.
func (f EntityForm) Validate() *validation.ValidationResult {
	return validation.ValidateEntityForm(f.document())
}

// Entity synthesizes the company described by the form.
func (f EntityForm) Entity(id int64, status models.ModerationStatus) models.BusinessEntity {
	e := models.BusinessEntity{
		ID:               id,
		Name:             strings.TrimSpace(f.Name),
		Description:      strings.TrimSpace(f.Description),
		Phone:            strings.TrimSpace(f.Phone),
		Email:            strings.TrimSpace(f.Email),
		ModerationStatus: status,
	}
	if w := strings.TrimSpace(f.Website); w != "" {
		e.Website = &w
	}
	if f.CategoryID != nil {
		c := *f.CategoryID
		e.CategoryID = &c
	}
	if f.Location != nil {
		loc := *f.Location
		e.Location = &loc
	}
	return e
}
