package panel

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"strings"
	"sync"
	"time"

	apperrors "business-directory/internal/common/errors"
	"business-directory/internal/common/logger"
	"business-directory/internal/common/metrics"
	"business-directory/internal/common/observability"
	"business-directory/internal/common/validation"
	"business-directory/internal/models"

	"go.opentelemetry.io/otel/attribute"
)

const (
	DefaultWatchdogTimeout  = 10 * time.Second
	DefaultEventLogCapacity = 5
)

const noSelectionLabel = "Select a company to see its details"

// Options configures a Router. Only Templates is needed for a working dashboard.
type Options struct {
	WatchdogTimeout        time.Duration
	EventLogCapacity       int
	NewBookingsPlaceholder int
	Templates              *TemplateSet
	Gateway                Gateway
	Search                 Searcher
	Bookings               BookingSource
	Observability          *observability.Observability
	Logger                 logger.Logger
	Now                    func() time.Time
	// Handlers replaces entries of the section dispatch table.
	Handlers map[Section]SectionHandler
}

// Router owns the navigation state and panel content of one dashboard session.
type Router struct {
	timeout   time.Duration
	templates *TemplateSet
	gateway   Gateway
	search    Searcher
	bookings  BookingSource
	obs       *observability.Observability
	logger    logger.Logger
	now       func() time.Time
	handlers  map[Section]SectionHandler

	mu         sync.Mutex
	entities   []models.BusinessEntity
	state      State
	panels     Panels
	counters   Counters
	events     *EventLog
	generation uint64
	cancelLoad context.CancelFunc
}

type loadResult struct {
	html template.HTML
	err  error
}

// NewRouter builds a router from the embedded company payload.
// An empty or malformed payload yields an empty snapshot and a warning entry.
func NewRouter(payload []byte, opts Options) (*Router, error) {
	if opts.WatchdogTimeout <= 0 {
		opts.WatchdogTimeout = DefaultWatchdogTimeout
	}
	if opts.EventLogCapacity <= 0 {
		opts.EventLogCapacity = DefaultEventLogCapacity
	}
	if opts.Logger == nil {
		opts.Logger = logger.NewNoOpLogger()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Templates == nil {
		set, err := NewTemplateSet(nil)
		if err != nil {
			return nil, err
		}
		opts.Templates = set
	}

	handlers := defaultHandlers()
	for section, h := range opts.Handlers {
		handlers[section] = h
	}
	for _, section := range AllSections {
		if handlers[section] == nil {
			return nil, fmt.Errorf("no handler registered for section %q", section)
		}
	}

	r := &Router{
		timeout:   opts.WatchdogTimeout,
		templates: opts.Templates,
		gateway:   opts.Gateway,
		search:    opts.Search,
		bookings:  opts.Bookings,
		obs:       opts.Observability,
		logger:    opts.Logger.WithFields(map[string]interface{}{"component": "panel"}),
		now:       opts.Now,
		handlers:  handlers,
		events:    NewEventLog(opts.EventLogCapacity),
		state:     State{CurrentSection: SectionDashboard},
	}

	entities, warning := decodeSnapshot(payload)
	if warning != "" {
		r.logEvent(EventWarning, warning)
		r.logger.Warn("dashboard snapshot not loaded", map[string]interface{}{"reason": warning})
	}
	r.entities = entities
	r.counters = Counters{
		PendingModeration: models.CountPending(entities),
		NewBookings:       opts.NewBookingsPlaceholder,
	}
	return r, nil
}

func decodeSnapshot(payload []byte) ([]models.BusinessEntity, string) {
	if len(strings.TrimSpace(string(payload))) == 0 {
		return []models.BusinessEntity{}, "No company data found on the page"
	}
	if result := validation.ValidateSnapshot(payload); !result.Valid {
		return []models.BusinessEntity{}, "Company data is invalid: " + strings.Join(result.GetErrorMessages(), "; ")
	}
	var raw []models.BusinessEntity
	if err := json.Unmarshal(payload, &raw); err != nil {
		return []models.BusinessEntity{}, "Company data is invalid: " + err.Error()
	}

	seen := make(map[int64]bool, len(raw))
	entities := make([]models.BusinessEntity, 0, len(raw))
	dropped := 0
	for _, e := range raw {
		if seen[e.ID] {
			dropped++
			continue
		}
		seen[e.ID] = true
		entities = append(entities, e)
	}
	if dropped > 0 {
		return entities, fmt.Sprintf("Ignored %d companies with duplicate ids", dropped)
	}
	return entities, ""
}

// LoadSection shows a section in the main panel and blocks until it is loaded, fails, times out or is superseded.
func (r *Router) LoadSection(ctx context.Context, key, title string) Outcome {
	section, known := ParseSection(key)
	label := title
	if label == "" {
		label = key
	}
	start := r.now()

	r.mu.Lock()
	r.generation++
	gen := r.generation
	if r.cancelLoad != nil {
		r.cancelLoad()
		r.cancelLoad = nil
	}

	if !known {
		r.panels.Main = r.templates.underDevelopment(label)
		r.logEvent(EventWarning, "Section under development: "+label)
		entities := r.entities
		r.mu.Unlock()

		r.logger.Warn("unknown section requested", map[string]interface{}{"section": key})
		r.commitBottom(ctx, gen, section, entities)
		r.recordLoad(ctx, "unknown", OutcomeUnknown, start)
		return OutcomeUnknown
	}

	r.state.CurrentSection = section
	r.panels.Main = r.templates.loading(label)
	loadCtx, cancel := context.WithCancel(ctx)
	r.cancelLoad = cancel
	view := r.viewLocked(section, label)
	handler := r.handlers[section]
	r.mu.Unlock()
	defer cancel()

	spanCtx, span := r.obs.StartSpan(loadCtx, "panel.LoadSection", attribute.String("section", key))
	defer span.End()

	outcome, result := r.runGuarded(spanCtx, section, handler, view)
	cancel()

	bottomCtx, cancelBottom := context.WithTimeout(ctx, r.bottomBudget())
	newBookings, bookingsOK := r.fetchNewBookings(bottomCtx)
	chart := bottomChart(bottomCtx, BottomPanelFor(section), view.Entities, r.bookings)
	cancelBottom()

	r.mu.Lock()
	defer r.mu.Unlock()
	if gen != r.generation {
		r.recordLoad(ctx, key, OutcomeStale, start)
		return OutcomeStale
	}
	r.cancelLoad = nil

	switch outcome {
	case OutcomeLoaded:
		r.panels.Main = result.html
		r.logEvent(EventInfo, "Loaded section: "+label)
	case OutcomeFailed:
		r.panels.Main = r.templates.errorBlock(label, section, result.err.Error())
		r.logEvent(EventDanger, fmt.Sprintf("Failed to load %s: %v", label, result.err))
		r.logger.Error("section load failed", map[string]interface{}{
			"section": key,
			"error":   apperrors.NewSectionLoadFailedError(key, result.err),
		})
	case OutcomeTimedOut:
		r.panels.Main = r.templates.timeoutBlock(label, section, r.timeout)
		r.logEvent(EventDanger, fmt.Sprintf("Section %s did not load within %s", label, r.timeout))
		r.logger.Error("section load timed out", map[string]interface{}{
			"section": key,
			"error":   apperrors.NewSectionTimeoutError(key, r.timeout),
		})
		metrics.WatchdogTimeouts.WithLabelValues(key).Inc()
	case OutcomeCancelled:
		r.panels.Main = r.templates.errorBlock(label, section, "loading was cancelled")
		r.logEvent(EventWarning, "Loading cancelled: "+label)
	}

	if bookingsOK {
		r.counters.NewBookings = newBookings
	}
	r.setBottomLocked(section, chart)
	r.recordLoad(ctx, key, outcome, start)
	return outcome
}

// runGuarded runs a section handler under the watchdog. A panic is reported as a failed load.
func (r *Router) runGuarded(ctx context.Context, section Section, handler SectionHandler, view View) (Outcome, loadResult) {
	done := make(chan loadResult, 1)
	go func() {
		defer func() {
			if p := recover(); p != nil {
				done <- loadResult{err: fmt.Errorf("section %s panicked: %v", section, p)}
			}
		}()
		html, err := handler(ctx, view)
		done <- loadResult{html: html, err: err}
	}()

	watchdog := time.NewTimer(r.timeout)
	defer watchdog.Stop()

	select {
	case result := <-done:
		if result.err != nil {
			return OutcomeFailed, result
		}
		return OutcomeLoaded, result
	case <-watchdog.C:
		return OutcomeTimedOut, loadResult{}
	case <-ctx.Done():
		return OutcomeCancelled, loadResult{}
	}
}

// bottomBudget bounds the counter and chart queries that accompany a section change.
func (r *Router) bottomBudget() time.Duration {
	return r.timeout / 2
}

// LoadBottomPanel renders the bottom panel that accompanies section.
func (r *Router) LoadBottomPanel(ctx context.Context, key string) {
	section := Section(key)
	r.mu.Lock()
	entities := r.entities
	r.mu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, r.bottomBudget())
	defer cancel()
	chart := bottomChart(ctx, BottomPanelFor(section), entities, r.bookings)

	r.mu.Lock()
	defer r.mu.Unlock()
	r.setBottomLocked(section, chart)
}

func (r *Router) commitBottom(ctx context.Context, gen uint64, section Section, entities []models.BusinessEntity) {
	ctx, cancel := context.WithTimeout(ctx, r.bottomBudget())
	defer cancel()
	chart := bottomChart(ctx, BottomPanelFor(section), entities, r.bookings)

	r.mu.Lock()
	defer r.mu.Unlock()
	if gen == r.generation {
		r.setBottomLocked(section, chart)
	}
}

func (r *Router) setBottomLocked(section Section, chart *ChartData) {
	kind := BottomPanelFor(section)
	r.panels.BottomKind = kind
	r.panels.BottomChart = chart
	r.panels.Bottom = r.templates.renderBottom(kind, bottomData{
		Kind:     kind,
		Counters: r.counters,
		Counts:   moderationCounts(r.entities),
		Total:    len(r.entities),
		Chart:    chart,
	})
}

func (r *Router) fetchNewBookings(ctx context.Context) (int, bool) {
	if r.bookings == nil {
		return 0, false
	}
	n, err := withDeadline(ctx, r.bookings.PendingBookings)
	if err != nil {
		r.logger.Warn("pending bookings unavailable", map[string]interface{}{"error": err})
		return 0, false
	}
	return n, true
}

func (r *Router) recordLoad(ctx context.Context, section string, outcome Outcome, start time.Time) {
	elapsed := r.now().Sub(start)
	metrics.SectionLoads.WithLabelValues(section, string(outcome)).Inc()
	metrics.SectionLoadDuration.WithLabelValues(section).Observe(elapsed.Seconds())
	r.obs.RecordSectionLoad(ctx, section, string(outcome), elapsed)
}

func (r *Router) viewLocked(section Section, title string) View {
	var selected *int64
	if r.state.SelectedEntityID != nil {
		id := *r.state.SelectedEntityID
		selected = &id
	}
	return View{
		Section:    section,
		Title:      title,
		Entities:   r.entities,
		SelectedID: selected,
		Query:      r.state.SearchQuery,
		Counters:   r.counters,
		Templates:  r.templates,
		Search:     r.search,
		Bookings:   r.bookings,
	}
}

func (r *Router) logEvent(kind EventKind, message string) {
	r.events.Append(Event{Kind: kind, Message: message, Timestamp: r.now()})
}

// SelectEntity shows a company in the right panel. A miss leaves the selection untouched.
func (r *Router) SelectEntity(id int64) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	entity, ok := findEntity(r.entities, id)
	if !ok {
		r.logEvent(EventDanger, fmt.Sprintf("Company %d not found", id))
		return false
	}
	selected := id
	r.state.SelectedEntityID = &selected
	r.state.Form = FormState{}
	r.panels.Right = r.renderDetailLocked(entity)
	r.logEvent(EventInfo, "Selected company: "+entity.Name)
	return true
}

type detailData struct {
	Entity  models.BusinessEntity
	Pending bool
}

func (r *Router) renderDetailLocked(entity models.BusinessEntity) template.HTML {
	out, err := r.templates.renderOrPlaceholder("entity-detail-template", entity.Name, detailData{
		Entity:  entity,
		Pending: entity.IsPending(),
	})
	if err != nil {
		r.logger.Error("entity detail render failed", map[string]interface{}{"companyId": entity.ID, "error": err})
		return r.templates.errorBlock(entity.Name, "", err.Error())
	}
	return out
}

// ApproveEntity marks a company approved.
func (r *Router) ApproveEntity(ctx context.Context, id int64) error {
	return r.moderate(ctx, id, models.ModerationApproved)
}

// RejectEntity marks a company rejected.
func (r *Router) RejectEntity(ctx context.Context, id int64) error {
	return r.moderate(ctx, id, models.ModerationRejected)
}

func (r *Router) moderate(ctx context.Context, id int64, status models.ModerationStatus) error {
	action := "approve"
	kind := EventSuccess
	verb := "approved"
	if status == models.ModerationRejected {
		action, kind, verb = "reject", EventWarning, "rejected"
	}

	ctx, span := r.obs.StartSpan(ctx, "panel.Moderate",
		attribute.Int64("companyId", id),
		attribute.String("action", action),
	)
	defer span.End()

	r.mu.Lock()
	entity, ok := findEntity(r.entities, id)
	if !ok {
		r.logEvent(EventDanger, fmt.Sprintf("Company %d not found", id))
		r.mu.Unlock()
		r.recordModeration(ctx, action, "not_found")
		return apperrors.NewEntityNotFoundError(id)
	}
	r.mu.Unlock()

	updated := entity.Clone()
	updated.ModerationStatus = status
	if r.gateway != nil {
		stored, err := r.gateway.SetModerationStatus(ctx, id, status, "")
		if err != nil {
			r.mu.Lock()
			r.logEvent(EventDanger, fmt.Sprintf("Failed to %s %s: %s", action, entity.Name, reason(err)))
			r.mu.Unlock()
			r.logger.Error("moderation failed", map[string]interface{}{"companyId": id, "action": action, "error": err})
			r.recordModeration(ctx, action, "failure")
			return err
		}
		updated = stored.Clone()
	}

	r.mu.Lock()
	i := indexOf(r.entities, id)
	if i < 0 {
		r.logEvent(EventDanger, fmt.Sprintf("Company %d not found", id))
		r.mu.Unlock()
		r.recordModeration(ctx, action, "not_found")
		return apperrors.NewEntityNotFoundError(id)
	}
	r.entities = replaceEntity(r.entities, i, updated)
	r.counters.PendingModeration = models.CountPending(r.entities)
	r.logEvent(kind, fmt.Sprintf("Company %s %s", updated.Name, verb))

	var refresh *pendingRender
	if r.state.CurrentSection == SectionModeration {
		refresh = r.beginRerenderLocked(ctx, SectionModeration)
	}
	if r.state.SelectedEntityID != nil && *r.state.SelectedEntityID == id {
		r.panels.Right = r.renderDetailLocked(updated)
	}
	r.mu.Unlock()

	if refresh != nil {
		r.rerender(refresh)
	}
	r.recordModeration(ctx, action, "success")
	return nil
}

type pendingRender struct {
	gen     uint64
	ctx     context.Context
	cancel  context.CancelFunc
	section Section
	view    View
	handler SectionHandler
}

// beginRerenderLocked supersedes any load in flight and captures what an in-place refresh needs.
func (r *Router) beginRerenderLocked(ctx context.Context, section Section) *pendingRender {
	r.generation++
	if r.cancelLoad != nil {
		r.cancelLoad()
	}
	ctx, cancel := context.WithCancel(ctx)
	r.cancelLoad = cancel
	return &pendingRender{
		gen:     r.generation,
		ctx:     ctx,
		cancel:  cancel,
		section: section,
		view:    r.viewLocked(section, section.Title()),
		handler: r.handlers[section],
	}
}

// rerender refreshes the main panel in place without a loading placeholder.
func (r *Router) rerender(p *pendingRender) {
	defer p.cancel()
	outcome, result := r.runGuarded(p.ctx, p.section, p.handler, p.view)

	r.mu.Lock()
	defer r.mu.Unlock()
	if p.gen != r.generation {
		return
	}
	r.cancelLoad = nil

	label := p.view.Title
	switch outcome {
	case OutcomeLoaded:
		r.panels.Main = result.html
	case OutcomeFailed:
		r.panels.Main = r.templates.errorBlock(label, p.section, result.err.Error())
		r.logEvent(EventDanger, fmt.Sprintf("Failed to load %s: %v", label, result.err))
		r.logger.Error("section refresh failed", map[string]interface{}{
			"section": string(p.section),
			"error":   apperrors.NewSectionLoadFailedError(string(p.section), result.err),
		})
	case OutcomeTimedOut:
		r.panels.Main = r.templates.timeoutBlock(label, p.section, r.timeout)
		r.logEvent(EventDanger, fmt.Sprintf("Section %s did not load within %s", label, r.timeout))
		metrics.WatchdogTimeouts.WithLabelValues(string(p.section)).Inc()
	case OutcomeCancelled:
		r.panels.Main = r.templates.errorBlock(label, p.section, "loading was cancelled")
	}
}

func (r *Router) recordModeration(ctx context.Context, action, outcome string) {
	metrics.ModerationActions.WithLabelValues(action, outcome).Inc()
	r.obs.RecordModeration(ctx, action, outcome)
}

// OpenEntityForm shows the create form, or the edit form when id is set.
func (r *Router) OpenEntityForm(id *int64) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	form := EntityForm{}
	if id != nil {
		entity, ok := findEntity(r.entities, *id)
		if !ok {
			r.logEvent(EventDanger, fmt.Sprintf("Company %d not found", *id))
			return false
		}
		form = FormFromEntity(entity)
	}
	r.state.Form = FormState{Open: true, EditingID: form.ID, Values: form}
	r.panels.Right = r.renderFormLocked()
	return true
}

type formData struct {
	Form    EntityForm
	Editing bool
	Invalid bool
	Errors  []string
}

func (r *Router) renderFormLocked() template.HTML {
	fs := r.state.Form
	out, err := r.templates.renderOrPlaceholder("entity-form-template", "Company form", formData{
		Form:    fs.Values,
		Editing: fs.EditingID != nil,
		Invalid: fs.Invalid,
		Errors:  fs.Errors,
	})
	if err != nil {
		return r.templates.errorBlock("Company form", "", err.Error())
	}
	return out
}

// SubmitEntityForm validates and persists a create or edit form, then returns to the companies section.
func (r *Router) SubmitEntityForm(ctx context.Context, form EntityForm) (*models.BusinessEntity, error) {
	if result := form.Validate(); !result.Valid {
		r.mu.Lock()
		r.state.Form = FormState{Open: true, EditingID: form.ID, Invalid: true, Errors: result.GetErrorMessages(), Values: form}
		r.panels.Right = r.renderFormLocked()
		r.logEvent(EventWarning, "Please fill in all required fields")
		r.mu.Unlock()
		return nil, apperrors.NewEntityValidationFailedError(strings.Join(result.InvalidFields(), ", "))
	}

	editing := form.ID != nil
	r.mu.Lock()
	var entity models.BusinessEntity
	if editing {
		existing, ok := findEntity(r.entities, *form.ID)
		if !ok {
			r.logEvent(EventDanger, fmt.Sprintf("Company %d not found", *form.ID))
			r.mu.Unlock()
			return nil, apperrors.NewEntityNotFoundError(*form.ID)
		}
		entity = form.Entity(existing.ID, existing.ModerationStatus)
	} else {
		entity = form.Entity(r.nextIDLocked(), models.ModerationPending)
	}
	if r.gateway == nil {
		r.commitSavedLocked(entity, editing)
		r.mu.Unlock()
		return r.finishSave(ctx, entity), nil
	}
	r.mu.Unlock()

	var (
		stored *models.BusinessEntity
		err    error
	)
	if editing {
		stored, err = r.gateway.UpdateEntity(ctx, entity)
	} else {
		stored, err = r.gateway.CreateEntity(ctx, entity)
	}
	if err != nil {
		r.mu.Lock()
		r.state.Form = FormState{Open: true, EditingID: form.ID, Values: form}
		r.panels.Right = r.renderFormLocked()
		r.logEvent(EventDanger, fmt.Sprintf("Failed to save %s: %s", entity.Name, reason(err)))
		r.mu.Unlock()
		r.logger.Error("company save failed", map[string]interface{}{"name": entity.Name, "error": err})
		return nil, err
	}
	entity = stored.Clone()

	r.mu.Lock()
	r.commitSavedLocked(entity, editing)
	r.mu.Unlock()
	return r.finishSave(ctx, entity), nil
}

func (r *Router) commitSavedLocked(entity models.BusinessEntity, editing bool) {
	if i := indexOf(r.entities, entity.ID); i >= 0 {
		r.entities = replaceEntity(r.entities, i, entity)
	} else {
		r.entities = appendEntity(r.entities, entity)
	}
	r.counters.PendingModeration = models.CountPending(r.entities)
	r.state.Form = FormState{}
	r.panels.Right = r.templates.empty(noSelectionLabel)
	if editing {
		r.logEvent(EventInfo, "Company updated: "+entity.Name)
	} else {
		r.logEvent(EventSuccess, "Company created: "+entity.Name)
	}
}

func (r *Router) finishSave(ctx context.Context, entity models.BusinessEntity) *models.BusinessEntity {
	r.LoadSection(ctx, string(SectionCompanies), SectionCompanies.Title())
	out := entity.Clone()
	return &out
}

// nextIDLocked derives an id from the current time, bumped until unique.
func (r *Router) nextIDLocked() int64 {
	id := r.now().UnixMilli()
	for indexOf(r.entities, id) >= 0 {
		id++
	}
	return id
}

// DeleteEntity removes a company and returns to the companies section.
func (r *Router) DeleteEntity(ctx context.Context, id int64) error {
	r.mu.Lock()
	entity, ok := findEntity(r.entities, id)
	if !ok {
		r.logEvent(EventDanger, fmt.Sprintf("Company %d not found", id))
		r.mu.Unlock()
		return apperrors.NewEntityNotFoundError(id)
	}
	r.mu.Unlock()

	if r.gateway != nil {
		if err := r.gateway.DeleteEntity(ctx, id); err != nil {
			r.mu.Lock()
			r.logEvent(EventDanger, fmt.Sprintf("Failed to delete %s: %s", entity.Name, reason(err)))
			r.mu.Unlock()
			r.logger.Error("company delete failed", map[string]interface{}{"companyId": id, "error": err})
			return err
		}
	}

	r.mu.Lock()
	if i := indexOf(r.entities, id); i >= 0 {
		r.entities = removeEntity(r.entities, i)
	}
	r.counters.PendingModeration = models.CountPending(r.entities)
	if r.state.SelectedEntityID != nil && *r.state.SelectedEntityID == id {
		r.state.SelectedEntityID = nil
		r.panels.Right = r.templates.empty(noSelectionLabel)
	}
	r.logEvent(EventWarning, "Company deleted: "+entity.Name)
	r.mu.Unlock()

	r.LoadSection(ctx, string(SectionCompanies), SectionCompanies.Title())
	return nil
}

// SetSearchQuery filters the companies section by name.
func (r *Router) SetSearchQuery(ctx context.Context, query string) Outcome {
	r.mu.Lock()
	r.state.SearchQuery = strings.TrimSpace(query)
	r.mu.Unlock()
	return r.LoadSection(ctx, string(SectionCompanies), SectionCompanies.Title())
}

// State returns a copy of the navigation state.
func (r *Router) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	s := r.state
	if s.SelectedEntityID != nil {
		id := *s.SelectedEntityID
		s.SelectedEntityID = &id
	}
	s.Form.Errors = append([]string(nil), s.Form.Errors...)
	return s
}

// Panels returns the current panel content.
func (r *Router) Panels() Panels {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.panels
}

// Counters returns the notification badges.
func (r *Router) Counters() Counters {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.counters
}

// Events returns the event log, most recent first.
func (r *Router) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.events.Entries()
}

// Entities returns a deep copy of the snapshot.
func (r *Router) Entities() []models.BusinessEntity {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]models.BusinessEntity, len(r.entities))
	for i, e := range r.entities {
		out[i] = e.Clone()
	}
	return out
}

// Entity returns a copy of one company.
func (r *Router) Entity(id int64) (models.BusinessEntity, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := findEntity(r.entities, id)
	if !ok {
		return models.BusinessEntity{}, false
	}
	return e.Clone(), true
}

// SnapshotJSON encodes the snapshot for the page data island.
func (r *Router) SnapshotJSON() ([]byte, error) {
	return json.Marshal(r.Entities())
}

func reason(err error) string {
	var se *apperrors.StandardError
	if errors.As(err, &se) {
		if se.Details != "" {
			return se.Details
		}
		return se.Message
	}
	return err.Error()
}
