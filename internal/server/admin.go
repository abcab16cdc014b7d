package server

import (
	"errors"
	"html/template"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	apperrors "business-directory/internal/common/errors"
	"business-directory/internal/models"
	"business-directory/internal/panel"

	"github.com/gorilla/mux"
)

type navItem struct {
	Key    string
	Title  string
	Active bool
}

type pageData struct {
	Title     string
	AdminPath string
	Sections  []navItem
	Counters  panel.Counters
	Panels    panel.Panels
	Events    []panel.Event
	Snapshot  template.JS
}

type fragmentPanels struct {
	Main   template.HTML         `json:"main"`
	Right  template.HTML         `json:"right"`
	Bottom template.HTML         `json:"bottom"`
	Kind   panel.BottomPanelKind `json:"bottomKind"`
	Chart  *panel.ChartData      `json:"bottomChart,omitempty"`
}

// fragmentResponse is returned to admin requests that ask for JSON instead of a page.
type fragmentResponse struct {
	Section  panel.Section  `json:"section"`
	Outcome  panel.Outcome  `json:"outcome,omitempty"`
	Selected *int64         `json:"selectedId,omitempty"`
	Panels   fragmentPanels `json:"panels"`
	Counters panel.Counters `json:"counters"`
	Events   []panel.Event  `json:"events"`
	Error    string         `json:"error,omitempty"`
}

// session resolves the caller's dashboard router and refreshes the cookie.
func (s *Server) session(w http.ResponseWriter, r *http.Request) (*panel.Router, bool) {
	var id string
	if c, err := r.Cookie(sessionCookie); err == nil {
		id = c.Value
	}
	newID, router, err := s.sessions.Acquire(r.Context(), id)
	if err != nil {
		s.errors.HandleHTTPError(w, r, apperrors.NewInternalError(err))
		return nil, false
	}
	if newID != id {
		http.SetCookie(w, &http.Cookie{
			Name:     sessionCookie,
			Value:    newID,
			Path:     s.cfg.AdminPath,
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
		})
	}
	return router, true
}

// handleDashboard loads the requested section and renders the page.
// Query parameters: section, title, q (companies search), select (company id).
func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	router, ok := s.session(w, r)
	if !ok {
		return
	}
	query := r.URL.Query()
	ctx := r.Context()

	var outcome panel.Outcome
	if q, searching := query["q"]; searching {
		outcome = router.SetSearchQuery(ctx, strings.Join(q, " "))
	} else {
		key := query.Get("section")
		if key == "" {
			key = string(router.State().CurrentSection)
		}
		title := query.Get("title")
		if title == "" {
			if section, known := panel.ParseSection(key); known {
				title = section.Title()
			}
		}
		outcome = router.LoadSection(ctx, key, title)
	}

	if raw := query.Get("select"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			s.errors.HandleHTTPError(w, r, apperrors.NewInvalidRequestError("invalid company id: "+raw))
			return
		}
		router.SelectEntity(id)
	}

	s.respond(w, r, router, http.StatusOK, outcome, nil)
}

func (s *Server) handleSelect(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.errors.HandleHTTPError(w, r, err)
		return
	}
	router, ok := s.session(w, r)
	if !ok {
		return
	}
	s.ensureLoaded(r, router)
	status := http.StatusOK
	if !router.SelectEntity(id) {
		status = http.StatusNotFound
	}
	s.respond(w, r, router, status, "", nil)
}

// handleEntityAction runs approve, reject or delete and returns to the current section.
func (s *Server) handleEntityAction(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.errors.HandleHTTPError(w, r, err)
		return
	}
	router, ok := s.session(w, r)
	if !ok {
		return
	}

	switch mux.Vars(r)["action"] {
	case "approve":
		err = router.ApproveEntity(r.Context(), id)
	case "reject":
		err = router.RejectEntity(r.Context(), id)
	case "delete":
		err = router.DeleteEntity(r.Context(), id)
	}

	if wantsJSON(r) {
		status := http.StatusOK
		if err != nil {
			status = apperrors.HTTPStatus(apperrors.Normalize(err).Code)
		}
		s.respond(w, r, router, status, "", err)
		return
	}
	s.redirectToSection(w, r, router)
}

func (s *Server) handleNewForm(w http.ResponseWriter, r *http.Request) {
	router, ok := s.session(w, r)
	if !ok {
		return
	}
	s.ensureLoaded(r, router)
	router.OpenEntityForm(nil)
	s.respond(w, r, router, http.StatusOK, "", nil)
}

func (s *Server) handleEditForm(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.errors.HandleHTTPError(w, r, err)
		return
	}
	router, ok := s.session(w, r)
	if !ok {
		return
	}
	s.ensureLoaded(r, router)
	status := http.StatusOK
	if !router.OpenEntityForm(&id) {
		status = http.StatusNotFound
	}
	s.respond(w, r, router, status, "", nil)
}

// handleSubmitForm saves the company form. Validation and save failures re-render the form in place.
func (s *Server) handleSubmitForm(w http.ResponseWriter, r *http.Request) {
	router, ok := s.session(w, r)
	if !ok {
		return
	}
	form, err := parseEntityForm(w, r)
	if err != nil {
		s.errors.HandleHTTPError(w, r, err)
		return
	}

	if _, err := router.SubmitEntityForm(r.Context(), form); err != nil {
		s.ensureLoaded(r, router)
		s.respond(w, r, router, apperrors.HTTPStatus(apperrors.Normalize(err).Code), "", err)
		return
	}
	if wantsJSON(r) {
		s.respond(w, r, router, http.StatusOK, panel.OutcomeLoaded, nil)
		return
	}
	s.redirectToSection(w, r, router)
}

// parseEntityForm reads a urlencoded or JSON company form.
func parseEntityForm(w http.ResponseWriter, r *http.Request) (panel.EntityForm, error) {
	var form panel.EntityForm
	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		if err := decodeJSON(w, r, &form); err != nil {
			return form, err
		}
		return form, nil
	}
	if err := r.ParseForm(); err != nil {
		return form, apperrors.NewInvalidRequestError("invalid form body: " + err.Error())
	}
	v := r.PostForm
	form = panel.EntityForm{
		Name:        v.Get("name"),
		Description: v.Get("description"),
		Phone:       v.Get("phone"),
		Email:       v.Get("email"),
		Website:     v.Get("website"),
	}
	var err error
	if form.ID, err = optionalID(v, "id"); err != nil {
		return form, err
	}
	if form.CategoryID, err = optionalID(v, "categoryId"); err != nil {
		return form, err
	}
	loc := models.Location{
		Address: strings.TrimSpace(v.Get("address")),
		City:    strings.TrimSpace(v.Get("city")),
		Region:  strings.TrimSpace(v.Get("region")),
		Zipcode: strings.TrimSpace(v.Get("zipcode")),
	}
	if loc != (models.Location{}) {
		form.Location = &loc
	}
	return form, nil
}

func optionalID(v url.Values, key string) (*int64, error) {
	raw := strings.TrimSpace(v.Get(key))
	if raw == "" {
		return nil, nil
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil, apperrors.NewInvalidRequestError("invalid " + key + ": " + raw)
	}
	return &id, nil
}

// ensureLoaded fills the main panel for sessions that have not loaded a section yet.
func (s *Server) ensureLoaded(r *http.Request, router *panel.Router) {
	if router.Panels().Main != "" {
		return
	}
	section := router.State().CurrentSection
	router.LoadSection(r.Context(), string(section), section.Title())
}

func (s *Server) redirectToSection(w http.ResponseWriter, r *http.Request, router *panel.Router) {
	target := s.cfg.AdminPath + "/?section=" + url.QueryEscape(string(router.State().CurrentSection))
	http.Redirect(w, r, target, http.StatusSeeOther)
}

// respond writes either the JSON fragment or the full dashboard page.
func (s *Server) respond(w http.ResponseWriter, r *http.Request, router *panel.Router, status int, outcome panel.Outcome, actionErr error) {
	state := router.State()
	panels := router.Panels()

	if wantsJSON(r) {
		resp := fragmentResponse{
			Section:  state.CurrentSection,
			Outcome:  outcome,
			Selected: state.SelectedEntityID,
			Panels: fragmentPanels{
				Main:   panels.Main,
				Right:  panels.Right,
				Bottom: panels.Bottom,
				Kind:   panels.BottomKind,
				Chart:  panels.BottomChart,
			},
			Counters: router.Counters(),
			Events:   router.Events(),
		}
		if actionErr != nil {
			resp.Error = actionErr.Error()
			var se *apperrors.StandardError
			if errors.As(actionErr, &se) {
				resp.Error = se.Message
			}
		}
		writeJSON(w, status, resp)
		return
	}

	snapshot, err := router.SnapshotJSON()
	if err != nil {
		s.errors.HandleHTTPError(w, r, apperrors.NewInternalError(err))
		return
	}
	nav := make([]navItem, 0, len(panel.AllSections))
	for _, section := range panel.AllSections {
		nav = append(nav, navItem{Key: string(section), Title: section.Title(), Active: section == state.CurrentSection})
	}
	page, err := s.templates.Render("dashboard-page", pageData{
		Title:     s.appName + " | " + state.CurrentSection.Title(),
		AdminPath: s.cfg.AdminPath,
		Sections:  nav,
		Counters:  router.Counters(),
		Panels:    panels,
		Events:    router.Events(),
		Snapshot:  template.JS(snapshot),
	})
	if err != nil {
		s.errors.HandleHTTPError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(page))
}
