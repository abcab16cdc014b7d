package panel

import (
	"context"

	"business-directory/internal/models"
)

// Gateway persists router mutations. Every call returns the stored entity or a reason.
type Gateway interface {
	CreateEntity(ctx context.Context, entity models.BusinessEntity) (*models.BusinessEntity, error)
	UpdateEntity(ctx context.Context, entity models.BusinessEntity) (*models.BusinessEntity, error)
	DeleteEntity(ctx context.Context, id int64) error
	SetModerationStatus(ctx context.Context, id int64, status models.ModerationStatus, comment string) (*models.BusinessEntity, error)
}

// Searcher resolves a free-text query to matching company ids.
type Searcher interface {
	SearchIDs(ctx context.Context, query string) ([]int64, error)
}

// BookingSource reports booking activity for counters and the calendar panel.
type BookingSource interface {
	PendingBookings(ctx context.Context) (int, error)
	WeeklyBookings(ctx context.Context) ([7]int, error)
}
