package panel

import (
	"context"
	"fmt"
	"html/template"
	"sort"

	"business-directory/internal/models"
)

// SectionHandler renders the main panel for one section.
type SectionHandler func(ctx context.Context, v View) (template.HTML, error)

const recentCompanies = 5

// defaultHandlers returns the dispatch table covering every section.
func defaultHandlers() map[Section]SectionHandler {
	return map[Section]SectionHandler{
		SectionDashboard:   renderDashboard,
		SectionCompanies:   renderCompanies,
		SectionServices:    renderStatic,
		SectionSchedule:    renderBookings,
		SectionBookings:    renderBookings,
		SectionNewBookings: renderBookings,
		SectionAnalytics:   renderAnalytics,
		SectionReports:     renderReports,
		SectionModeration:  renderModeration,
		SectionTelegram:    renderStatic,
		SectionProfile:     renderStatic,
	}
}

type dashboardData struct {
	Title    string
	Total    int
	Counts   models.ModerationCounts
	Counters Counters
	Recent   []models.BusinessEntity
	Chart    *ChartData
}

func renderDashboard(ctx context.Context, v View) (template.HTML, error) {
	recent := append([]models.BusinessEntity(nil), v.Entities...)
	sort.Slice(recent, func(i, j int) bool { return recent[i].ID > recent[j].ID })
	if len(recent) > recentCompanies {
		recent = recent[:recentCompanies]
	}
	return v.Templates.renderOrPlaceholder(v.Section.TemplateID(), v.Title, dashboardData{
		Title:    v.Title,
		Total:    len(v.Entities),
		Counts:   moderationCounts(v.Entities),
		Counters: v.Counters,
		Recent:   recent,
		Chart:    ModerationChart(v.Entities),
	})
}

type companiesData struct {
	Title     string
	Query     string
	Companies []models.BusinessEntity
	Total     int
	Fallback  bool
	Selected  *int64
}

func renderCompanies(ctx context.Context, v View) (template.HTML, error) {
	companies, fallback, err := filterCompanies(ctx, v)
	if err != nil {
		return "", err
	}
	return v.Templates.renderOrPlaceholder(v.Section.TemplateID(), v.Title, companiesData{
		Title:     v.Title,
		Query:     v.Query,
		Companies: companies,
		Total:     len(v.Entities),
		Fallback:  fallback,
		Selected:  v.SelectedID,
	})
}

// filterCompanies applies the search query. The index is preferred; a failing index falls back to a name match.
func filterCompanies(ctx context.Context, v View) ([]models.BusinessEntity, bool, error) {
	if v.Query == "" {
		return v.Entities, false, nil
	}
	if v.Search != nil {
		ids, err := v.Search.SearchIDs(ctx, v.Query)
		if err == nil {
			wanted := make(map[int64]bool, len(ids))
			for _, id := range ids {
				wanted[id] = true
			}
			out := make([]models.BusinessEntity, 0, len(ids))
			for _, e := range v.Entities {
				if wanted[e.ID] {
					out = append(out, e)
				}
			}
			return out, false, nil
		}
		if ctx.Err() != nil {
			return nil, false, ctx.Err()
		}
	}
	out := make([]models.BusinessEntity, 0)
	for _, e := range v.Entities {
		if e.MatchesName(v.Query) {
			out = append(out, e)
		}
	}
	return out, v.Search != nil, nil
}

type moderationData struct {
	Title    string
	Pending  []models.BusinessEntity
	Counts   models.ModerationCounts
	Selected *int64
}

func renderModeration(ctx context.Context, v View) (template.HTML, error) {
	pending := make([]models.BusinessEntity, 0)
	for _, e := range v.Entities {
		if e.IsPending() {
			pending = append(pending, e)
		}
	}
	return v.Templates.renderOrPlaceholder(v.Section.TemplateID(), v.Title, moderationData{
		Title:    v.Title,
		Pending:  pending,
		Counts:   moderationCounts(v.Entities),
		Selected: v.SelectedID,
	})
}

type bookingsData struct {
	Title       string
	Section     string
	NewBookings int
	Weekly      *ChartData
}

func renderBookings(ctx context.Context, v View) (template.HTML, error) {
	data := bookingsData{Title: v.Title, Section: string(v.Section), NewBookings: v.Counters.NewBookings}
	if v.Bookings != nil {
		weekly, err := v.Bookings.WeeklyBookings(ctx)
		if err != nil {
			return "", fmt.Errorf("weekly bookings: %w", err)
		}
		data.Weekly = BookingsChart(weekly)
	}
	return v.Templates.renderOrPlaceholder(v.Section.TemplateID(), v.Title, data)
}

type analyticsData struct {
	Title      string
	Moderation *ChartData
	Cities     *ChartData
	Bookings   *ChartData
}

func renderAnalytics(ctx context.Context, v View) (template.HTML, error) {
	data := analyticsData{
		Title:      v.Title,
		Moderation: ModerationChart(v.Entities),
		Cities:     CityChart(v.Entities),
	}
	if v.Bookings != nil {
		weekly, err := v.Bookings.WeeklyBookings(ctx)
		if err != nil {
			return "", fmt.Errorf("weekly bookings: %w", err)
		}
		data.Bookings = BookingsChart(weekly)
	}
	return v.Templates.renderOrPlaceholder(v.Section.TemplateID(), v.Title, data)
}

type reportsData struct {
	Title  string
	Total  int
	Counts models.ModerationCounts
	Cities *ChartData
}

func renderReports(ctx context.Context, v View) (template.HTML, error) {
	return v.Templates.renderOrPlaceholder(v.Section.TemplateID(), v.Title, reportsData{
		Title:  v.Title,
		Total:  len(v.Entities),
		Counts: moderationCounts(v.Entities),
		Cities: CityChart(v.Entities),
	})
}

type staticData struct {
	Title    string
	Counters Counters
}

func renderStatic(ctx context.Context, v View) (template.HTML, error) {
	return v.Templates.renderOrPlaceholder(v.Section.TemplateID(), v.Title, staticData{Title: v.Title, Counters: v.Counters})
}

func moderationCounts(entities []models.BusinessEntity) models.ModerationCounts {
	var c models.ModerationCounts
	for _, e := range entities {
		switch e.ModerationStatus {
		case models.ModerationPending:
			c.Pending++
		case models.ModerationApproved:
			c.Approved++
		case models.ModerationRejected:
			c.Rejected++
		}
	}
	return c
}

type bottomData struct {
	Kind     BottomPanelKind
	Counters Counters
	Counts   models.ModerationCounts
	Total    int
	Chart    *ChartData
}

// bottomChart picks the chart for a bottom panel kind.
func bottomChart(ctx context.Context, kind BottomPanelKind, entities []models.BusinessEntity, bookings BookingSource) *ChartData {
	switch kind {
	case BottomCalendar:
		var weekly [7]int
		if bookings != nil {
			if w, err := withDeadline(ctx, bookings.WeeklyBookings); err == nil {
				weekly = w
			}
		}
		return BookingsChart(weekly)
	case BottomStats:
		return CityChart(entities)
	default:
		return ModerationChart(entities)
	}
}

// withDeadline returns when fetch does or when ctx ends, whichever comes first.
// A source that ignores ctx finishes in the background and its result is dropped.
func withDeadline[T any](ctx context.Context, fetch func(context.Context) (T, error)) (T, error) {
	type result struct {
		value T
		err   error
	}
	done := make(chan result, 1)
	go func() {
		v, err := fetch(ctx)
		done <- result{value: v, err: err}
	}()
	select {
	case res := <-done:
		return res.value, res.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

func (s *TemplateSet) renderBottom(kind BottomPanelKind, data bottomData) template.HTML {
	out, err := s.renderOrPlaceholder(kind.TemplateID(), "Statistics", data)
	if err != nil {
		return s.errorBlock("Statistics", "", err.Error())
	}
	return out
}
