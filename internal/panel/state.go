package panel

import (
	"html/template"

	"business-directory/internal/models"
)

// State is the navigation state owned by a router.
type State struct {
	CurrentSection   Section
	SelectedEntityID *int64
	SearchQuery      string
	Form             FormState
}

// Counters are the notification badges in the navigation bar.
type Counters struct {
	PendingModeration int `json:"pendingModeration"`
	NewBookings       int `json:"newBookings"`
}

// Panels is the rendered content of the three dashboard regions.
type Panels struct {
	Main        template.HTML
	Right       template.HTML
	Bottom      template.HTML
	BottomKind  BottomPanelKind
	BottomChart *ChartData
}

// Outcome describes how a section load finished.
type Outcome string

const (
	OutcomeLoaded    Outcome = "loaded"
	OutcomeFailed    Outcome = "failed"
	OutcomeTimedOut  Outcome = "timeout"
	OutcomeUnknown   Outcome = "unknown"
	OutcomeStale     Outcome = "stale"
	OutcomeCancelled Outcome = "cancelled"
)

// View is the read-only input handed to a section handler. Entities must not be modified.
type View struct {
	Section    Section
	Title      string
	Entities   []models.BusinessEntity
	SelectedID *int64
	Query      string
	Counters   Counters
	Templates  *TemplateSet
	Search     Searcher
	Bookings   BookingSource
}

// Entity looks up a company by id with a linear scan.
func (v View) Entity(id int64) (models.BusinessEntity, bool) {
	return findEntity(v.Entities, id)
}

func findEntity(entities []models.BusinessEntity, id int64) (models.BusinessEntity, bool) {
	if i := indexOf(entities, id); i >= 0 {
		return entities[i], true
	}
	return models.BusinessEntity{}, false
}

func indexOf(entities []models.BusinessEntity, id int64) int {
	for i := range entities {
		if entities[i].ID == id {
			return i
		}
	}
	return -1
}

// replaceEntity returns a new slice with e stored at index i.
func replaceEntity(entities []models.BusinessEntity, i int, e models.BusinessEntity) []models.BusinessEntity {
	out := make([]models.BusinessEntity, len(entities))
	copy(out, entities)
	out[i] = e
	return out
}

func appendEntity(entities []models.BusinessEntity, e models.BusinessEntity) []models.BusinessEntity {
	out := make([]models.BusinessEntity, len(entities), len(entities)+1)
	copy(out, entities)
	return append(out, e)
}

func removeEntity(entities []models.BusinessEntity, i int) []models.BusinessEntity {
	out := make([]models.BusinessEntity, 0, len(entities)-1)
	out = append(out, entities[:i]...)
	return append(out, entities[i+1:]...)
}
