package directory

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	apperrors "business-directory/internal/common/errors"
	"business-directory/internal/common/logger"
	"business-directory/internal/common/observability"
	"business-directory/internal/models"

	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"
)

const (
	defaultSearchLimit = 50
	reindexConcurrency = 4
)

type companyStore interface {
	List(ctx context.Context) ([]models.BusinessEntity, error)
	ListByStatus(ctx context.Context, status models.ModerationStatus) ([]models.BusinessEntity, error)
	Get(ctx context.Context, id int64) (*models.BusinessEntity, error)
	FindIDByName(ctx context.Context, name string) (int64, bool, error)
	Create(ctx context.Context, e models.BusinessEntity, check models.AutoCheckResult) (*models.BusinessEntity, error)
	Update(ctx context.Context, e models.BusinessEntity) (*models.BusinessEntity, error)
	Delete(ctx context.Context, id int64) error
	SetModerationStatus(ctx context.Context, id int64, status models.ModerationStatus, comment string, moderatorID *int64) error
	RecordAutoCheck(ctx context.Context, companyID int64, status models.ModerationStatus, passed bool, notes string) error
	ListModerationRecords(ctx context.Context, companyID int64) ([]models.ModerationRecord, error)
	ModerationCounts(ctx context.Context) (models.ModerationCounts, error)
	SearchIDs(ctx context.Context, query string, limit int) ([]int64, error)
	CountPendingBookings(ctx context.Context) (int, error)
	WeeklyBookings(ctx context.Context, now time.Time) ([7]int, error)
}

type companyIndex interface {
	Index(ctx context.Context, e models.BusinessEntity) error
	Delete(ctx context.Context, id int64) error
	SearchIDs(ctx context.Context, query string) ([]int64, error)
}

type snapshotCache interface {
	Get(ctx context.Context) ([]byte, bool, error)
	Set(ctx context.Context, payload []byte) error
	Invalidate(ctx context.Context) error
}

type decisionNotifier interface {
	NotifyDecision(ctx context.Context, e models.BusinessEntity, decision models.ModerationStatus, comment string) []models.Notification
}

// Deps wires the optional collaborators of a Service. Store is required.
type Deps struct {
	Store         companyStore
	Index         companyIndex
	Cache         snapshotCache
	Notifier      decisionNotifier
	BannedWords   []string
	Observability *observability.Observability
	Logger        logger.Logger
}

// Service is the company directory: persistence, search mirror, snapshot cache and notifications.
type Service struct {
	store    companyStore
	index    companyIndex
	cache    snapshotCache
	notifier decisionNotifier
	checker  *AutoChecker
	obs      *observability.Observability
	logger   logger.Logger
	now      func() time.Time
}

func NewService(deps Deps) *Service {
	log := deps.Logger
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	return &Service{
		store:    deps.Store,
		index:    deps.Index,
		cache:    deps.Cache,
		notifier: deps.Notifier,
		checker:  NewAutoChecker(deps.Store, deps.BannedWords),
		obs:      deps.Observability,
		logger:   log.WithFields(map[string]interface{}{"component": "directory"}),
		now:      time.Now,
	}
}

// ==========================
// Reads
// ==========================

func (s *Service) List(ctx context.Context) ([]models.BusinessEntity, error) {
	out, err := s.store.List(ctx)
	if err != nil {
		return nil, apperrors.NewQueryExecutionFailedError(string(models.QueryCompanyList), err)
	}
	return out, nil
}

func (s *Service) Get(ctx context.Context, id int64) (*models.BusinessEntity, error) {
	e, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, s.translate(err, id, "", string(models.QueryCompanyByID))
	}
	return e, nil
}

// Pending returns the moderation queue.
func (s *Service) Pending(ctx context.Context) ([]models.BusinessEntity, error) {
	out, err := s.store.ListByStatus(ctx, models.ModerationPending)
	if err != nil {
		return nil, apperrors.NewQueryExecutionFailedError("company_list_pending", err)
	}
	return out, nil
}

func (s *Service) Counts(ctx context.Context) (models.ModerationCounts, error) {
	c, err := s.store.ModerationCounts(ctx)
	if err != nil {
		return c, apperrors.NewQueryExecutionFailedError(string(models.QueryModerationCounts), err)
	}
	return c, nil
}

// ModerationHistory returns the moderation records of a company, newest first.
func (s *Service) ModerationHistory(ctx context.Context, id int64) ([]models.ModerationRecord, error) {
	if _, err := s.store.Get(ctx, id); err != nil {
		return nil, s.translate(err, id, "", string(models.QueryCompanyByID))
	}
	records, err := s.store.ListModerationRecords(ctx, id)
	if err != nil {
		return nil, s.translate(err, id, "", "moderation_records")
	}
	return records, nil
}

// SearchIDs prefers the search index and falls back to a database match when it fails.
func (s *Service) SearchIDs(ctx context.Context, query string) ([]int64, error) {
	query = strings.TrimSpace(query)
	if s.index != nil {
		ids, err := s.index.SearchIDs(ctx, query)
		if err == nil {
			return ids, nil
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		s.logger.Warn("search index unavailable, using database match", map[string]interface{}{
			"query": query,
			"error": err.Error(),
		})
	}
	ids, err := s.store.SearchIDs(ctx, query, defaultSearchLimit)
	if err != nil {
		return nil, apperrors.NewSearchQueryFailedError(query, err)
	}
	return ids, nil
}

// Search resolves a query to companies in relevance order.
func (s *Service) Search(ctx context.Context, query string) ([]models.BusinessEntity, error) {
	ids, err := s.SearchIDs(ctx, query)
	if err != nil {
		return nil, err
	}
	all, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	byID := make(map[int64]models.BusinessEntity, len(all))
	for _, e := range all {
		byID[e.ID] = e
	}
	out := make([]models.BusinessEntity, 0, len(ids))
	for _, id := range ids {
		if e, ok := byID[id]; ok {
			out = append(out, e)
		}
	}
	return out, nil
}

func (s *Service) PendingBookings(ctx context.Context) (int, error) {
	n, err := s.store.CountPendingBookings(ctx)
	if err != nil {
		return 0, apperrors.NewQueryExecutionFailedError(string(models.QueryPendingBookingsCount), err)
	}
	return n, nil
}

func (s *Service) WeeklyBookings(ctx context.Context) ([7]int, error) {
	w, err := s.store.WeeklyBookings(ctx, s.now())
	if err != nil {
		return w, apperrors.NewQueryExecutionFailedError("weekly_bookings", err)
	}
	return w, nil
}

// Snapshot returns the JSON payload embedded in the dashboard page, served from the cache when possible.
func (s *Service) Snapshot(ctx context.Context) ([]byte, error) {
	if s.cache != nil {
		payload, ok, err := s.cache.Get(ctx)
		if err != nil {
			s.logger.Warn("snapshot cache read failed", map[string]interface{}{"error": err.Error()})
		} else if ok {
			return payload, nil
		}
	}
	payload, err := s.buildSnapshot(ctx)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		if err := s.cache.Set(ctx, payload); err != nil {
			s.logger.Warn("snapshot cache write failed", map[string]interface{}{"error": err.Error()})
		}
	}
	return payload, nil
}

// WarmCache rebuilds the cached snapshot.
func (s *Service) WarmCache(ctx context.Context) error {
	if s.cache == nil {
		return nil
	}
	payload, err := s.buildSnapshot(ctx)
	if err != nil {
		return err
	}
	if err := s.cache.Set(ctx, payload); err != nil {
		return apperrors.NewCacheUnavailableError(err)
	}
	s.logger.Debug("snapshot cache warmed", map[string]interface{}{"bytes": len(payload)})
	return nil
}

func (s *Service) buildSnapshot(ctx context.Context) ([]byte, error) {
	entities, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	return json.Marshal(entities)
}

// Reindex mirrors every company into the search index and returns how many were written.
func (s *Service) Reindex(ctx context.Context) (int, error) {
	if s.index == nil {
		return 0, errors.New("search index not configured")
	}
	entities, err := s.List(ctx)
	if err != nil {
		return 0, err
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(reindexConcurrency)
	for _, e := range entities {
		g.Go(func() error {
			if err := s.index.Index(gctx, e); err != nil {
				return fmt.Errorf("index company %d: %w", e.ID, err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return 0, err
	}
	s.logger.Info("search index rebuilt", map[string]interface{}{"companies": len(entities)})
	return len(entities), nil
}

// ==========================
// Writes
// ==========================

// CreateEntity runs the automatic checks and stores a new pending company. The caller's id is ignored.
func (s *Service) CreateEntity(ctx context.Context, e models.BusinessEntity) (*models.BusinessEntity, error) {
	ctx, span := s.obs.StartSpan(ctx, "directory.create", attribute.String("company.name", e.Name))
	defer span.End()

	e.ID = 0
	e.ModerationStatus = models.ModerationPending
	check, err := s.checker.Check(ctx, e)
	if err != nil {
		return nil, apperrors.NewQueryExecutionFailedError(string(models.QueryCompanyByName), err)
	}
	if !check.NotDuplicate {
		return nil, apperrors.NewDuplicateEntityError(e.Name)
	}

	stored, err := s.store.Create(ctx, e, check)
	if err != nil {
		if errors.Is(err, ErrDuplicateEntity) {
			return nil, apperrors.NewDuplicateEntityError(e.Name)
		}
		return nil, apperrors.NewDatabaseInsertFailedError(err)
	}

	s.logger.Info("company created", map[string]interface{}{
		"companyId":       stored.ID,
		"autoCheckPassed": check.Passed(),
		"issues":          check.Issues,
	})
	s.afterWrite(ctx, stored)
	return stored, nil
}

// UpdateEntity stores the editable fields. Moderation status is kept from the database.
func (s *Service) UpdateEntity(ctx context.Context, e models.BusinessEntity) (*models.BusinessEntity, error) {
	ctx, span := s.obs.StartSpan(ctx, "directory.update", attribute.Int64("company.id", e.ID))
	defer span.End()

	if _, err := s.store.Update(ctx, e); err != nil {
		return nil, s.translate(err, e.ID, e.Name, "company_update")
	}
	stored, err := s.store.Get(ctx, e.ID)
	if err != nil {
		return nil, s.translate(err, e.ID, e.Name, string(models.QueryCompanyByID))
	}
	s.logger.Info("company updated", map[string]interface{}{"companyId": e.ID})
	s.afterWrite(ctx, stored)
	return stored, nil
}

func (s *Service) DeleteEntity(ctx context.Context, id int64) error {
	ctx, span := s.obs.StartSpan(ctx, "directory.delete", attribute.Int64("company.id", id))
	defer span.End()

	if err := s.store.Delete(ctx, id); err != nil {
		return s.translate(err, id, "", "company_delete")
	}
	if s.index != nil {
		if err := s.index.Delete(ctx, id); err != nil {
			s.logger.Warn("search index delete failed", map[string]interface{}{"companyId": id, "error": err.Error()})
		}
	}
	s.invalidate(ctx)
	s.logger.Info("company deleted", map[string]interface{}{"companyId": id})
	return nil
}

// SetModerationStatus applies a moderation decision, records it and notifies the company.
func (s *Service) SetModerationStatus(ctx context.Context, id int64, status models.ModerationStatus, comment string) (*models.BusinessEntity, error) {
	return s.Moderate(ctx, id, status, comment, nil)
}

// Moderate is SetModerationStatus with the acting moderator recorded.
func (s *Service) Moderate(ctx context.Context, id int64, status models.ModerationStatus, comment string, moderatorID *int64) (*models.BusinessEntity, error) {
	ctx, span := s.obs.StartSpan(ctx, "directory.moderate",
		attribute.Int64("company.id", id),
		attribute.String("moderation.status", string(status)))
	defer span.End()

	if !status.IsValid() {
		return nil, apperrors.NewInvalidRequestError(fmt.Sprintf("unknown moderation status %q", status))
	}
	current, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, s.translate(err, id, "", string(models.QueryCompanyByID))
	}
	if !models.CanTransition(current.ModerationStatus, status) {
		return nil, apperrors.NewInvalidModerationTransitionError(string(current.ModerationStatus), string(status))
	}
	if err := s.store.SetModerationStatus(ctx, id, status, comment, moderatorID); err != nil {
		return nil, s.translate(err, id, current.Name, "company_moderate")
	}

	updated := current.Clone()
	updated.ModerationStatus = status
	s.logger.Info("moderation decision stored", map[string]interface{}{
		"companyId": id,
		"from":      string(current.ModerationStatus),
		"to":        string(status),
	})
	s.afterWrite(ctx, &updated)

	if s.notifier != nil {
		for _, n := range s.notifier.NotifyDecision(ctx, updated, status, comment) {
			s.logger.Debug("moderation notification", map[string]interface{}{
				"channel": n.Channel,
				"status":  n.Status,
			})
		}
	}
	return &updated, nil
}

// AutoCheck reruns the automatic checks on a stored company and appends the result to its moderation history.
// The moderation status is left unchanged.
func (s *Service) AutoCheck(ctx context.Context, id int64) (models.AutoCheckResult, error) {
	ctx, span := s.obs.StartSpan(ctx, "directory.autocheck", attribute.Int64("company.id", id))
	defer span.End()

	current, err := s.store.Get(ctx, id)
	if err != nil {
		return models.AutoCheckResult{}, s.translate(err, id, "", string(models.QueryCompanyByID))
	}
	check, err := s.checker.Check(ctx, *current)
	if err != nil {
		return models.AutoCheckResult{}, apperrors.NewQueryExecutionFailedError(string(models.QueryCompanyByName), err)
	}
	notes := strings.Join(check.Issues, "; ")
	if err := s.store.RecordAutoCheck(ctx, id, current.ModerationStatus, check.Passed(), notes); err != nil {
		return models.AutoCheckResult{}, s.translate(err, id, current.Name, "moderation_record_insert")
	}
	s.logger.Info("auto check recorded", map[string]interface{}{
		"companyId": id,
		"passed":    check.Passed(),
		"issues":    check.Issues,
	})
	return check, nil
}

// afterWrite mirrors a stored company into the search index and drops the cached snapshot.
// Neither failure undoes the write.
func (s *Service) afterWrite(ctx context.Context, e *models.BusinessEntity) {
	if s.index != nil {
		if err := s.index.Index(ctx, *e); err != nil {
			s.logger.Warn("search index update failed", map[string]interface{}{"companyId": e.ID, "error": err.Error()})
		}
	}
	s.invalidate(ctx)
}

func (s *Service) invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx); err != nil {
		s.logger.Warn("snapshot cache invalidation failed", map[string]interface{}{"error": err.Error()})
	}
}

func (s *Service) translate(err error, id int64, name, queryName string) error {
	switch {
	case errors.Is(err, ErrEntityNotFound):
		return apperrors.NewEntityNotFoundError(id)
	case errors.Is(err, ErrDuplicateEntity):
		return apperrors.NewDuplicateEntityError(name)
	case errors.Is(err, context.DeadlineExceeded):
		return apperrors.NewQueryTimeoutError(queryName)
	default:
		return apperrors.NewQueryExecutionFailedError(queryName, err)
	}
}
