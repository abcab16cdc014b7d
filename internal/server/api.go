package server

import (
	"net/http"
	"strings"

	apperrors "business-directory/internal/common/errors"
	"business-directory/internal/common/metrics"
	"business-directory/internal/models"
	"business-directory/internal/panel"
)

type companyRequest struct {
	Name        string           `json:"name"`
	Description string           `json:"description"`
	Phone       string           `json:"phone"`
	Email       string           `json:"email"`
	Website     string           `json:"website,omitempty"`
	CategoryID  *int64           `json:"categoryId,omitempty"`
	Location    *models.Location `json:"location,omitempty"`
}

// entity validates the request with the same schema as the dashboard form.
func (req companyRequest) entity(id int64) (models.BusinessEntity, error) {
	form := panel.EntityForm{
		Name:        req.Name,
		Description: req.Description,
		Phone:       req.Phone,
		Email:       req.Email,
		Website:     req.Website,
		CategoryID:  req.CategoryID,
		Location:    req.Location,
	}
	if res := form.Validate(); !res.Valid {
		return models.BusinessEntity{}, apperrors.NewEntityValidationFailedError(strings.Join(res.GetErrorMessages(), "; "))
	}
	return form.Entity(id, models.ModerationPending), nil
}

type moderationRequest struct {
	Status      models.ModerationStatus `json:"status"`
	Comment     string                  `json:"comment,omitempty"`
	ModeratorID *int64                  `json:"moderatorId,omitempty"`
}

type listResponse struct {
	Items []models.BusinessEntity `json:"items"`
	Total int                     `json:"total"`
}

func (s *Server) handleListCompanies(w http.ResponseWriter, r *http.Request) {
	var (
		items []models.BusinessEntity
		err   error
	)
	if status := models.ModerationStatus(r.URL.Query().Get("status")); status != "" {
		if !status.IsValid() {
			s.errors.HandleHTTPError(w, r, apperrors.NewInvalidRequestError("unknown status filter: "+string(status)))
			return
		}
		items, err = s.listByStatus(r, status)
	} else {
		items, err = s.dir.List(r.Context())
	}
	if err != nil {
		s.errors.HandleHTTPError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, listResponse{Items: items, Total: len(items)})
}

func (s *Server) listByStatus(r *http.Request, status models.ModerationStatus) ([]models.BusinessEntity, error) {
	if status == models.ModerationPending {
		return s.dir.Pending(r.Context())
	}
	all, err := s.dir.List(r.Context())
	if err != nil {
		return nil, err
	}
	out := make([]models.BusinessEntity, 0)
	for _, e := range all {
		if e.ModerationStatus == status {
			out = append(out, e)
		}
	}
	return out, nil
}

func (s *Server) handleGetCompany(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.errors.HandleHTTPError(w, r, err)
		return
	}
	e, err := s.dir.Get(r.Context(), id)
	if err != nil {
		s.errors.HandleHTTPError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, e)
}

func (s *Server) handleCreateCompany(w http.ResponseWriter, r *http.Request) {
	var req companyRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.errors.HandleHTTPError(w, r, err)
		return
	}
	e, err := req.entity(0)
	if err != nil {
		s.errors.HandleHTTPError(w, r, err)
		return
	}
	stored, err := s.dir.CreateEntity(r.Context(), e)
	if err != nil {
		s.errors.HandleHTTPError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, stored)
}

func (s *Server) handleUpdateCompany(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.errors.HandleHTTPError(w, r, err)
		return
	}
	var req companyRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.errors.HandleHTTPError(w, r, err)
		return
	}
	e, err := req.entity(id)
	if err != nil {
		s.errors.HandleHTTPError(w, r, err)
		return
	}
	stored, err := s.dir.UpdateEntity(r.Context(), e)
	if err != nil {
		s.errors.HandleHTTPError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, stored)
}

func (s *Server) handleDeleteCompany(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.errors.HandleHTTPError(w, r, err)
		return
	}
	if err := s.dir.DeleteEntity(r.Context(), id); err != nil {
		s.errors.HandleHTTPError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleModerateCompany(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.errors.HandleHTTPError(w, r, err)
		return
	}
	var req moderationRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.errors.HandleHTTPError(w, r, err)
		return
	}
	action := string(req.Status)
	if !req.Status.IsValid() {
		action = "unknown"
	}
	updated, err := s.dir.Moderate(r.Context(), id, req.Status, req.Comment, req.ModeratorID)
	if err != nil {
		metrics.ModerationActions.WithLabelValues(action, "failed").Inc()
		s.obs.RecordModeration(r.Context(), action, "failed")
		s.errors.HandleHTTPError(w, r, err)
		return
	}
	metrics.ModerationActions.WithLabelValues(action, "success").Inc()
	s.obs.RecordModeration(r.Context(), action, "success")
	writeJSON(w, http.StatusOK, updated)
}

func (s *Server) handlePendingCompanies(w http.ResponseWriter, r *http.Request) {
	items, err := s.dir.Pending(r.Context())
	if err != nil {
		s.errors.HandleHTTPError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, listResponse{Items: items, Total: len(items)})
}

func (s *Server) handleModerationCounts(w http.ResponseWriter, r *http.Request) {
	counts, err := s.dir.Counts(r.Context())
	if err != nil {
		s.errors.HandleHTTPError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, counts)
}

func (s *Server) handleModerationHistory(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.errors.HandleHTTPError(w, r, err)
		return
	}
	records, err := s.dir.ModerationHistory(r.Context(), id)
	if err != nil {
		s.errors.HandleHTTPError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, records)
}

type autoCheckResponse struct {
	models.AutoCheckResult
	CompanyID int64 `json:"companyId"`
	Passed    bool  `json:"passed"`
}

func (s *Server) handleAutoCheck(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.errors.HandleHTTPError(w, r, err)
		return
	}
	res, err := s.dir.AutoCheck(r.Context(), id)
	if err != nil {
		s.errors.HandleHTTPError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, autoCheckResponse{AutoCheckResult: res, CompanyID: id, Passed: res.Passed()})
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	q := strings.TrimSpace(r.URL.Query().Get("q"))
	if q == "" {
		s.errors.HandleHTTPError(w, r, apperrors.NewInvalidRequestError("query parameter q is required"))
		return
	}
	items, err := s.dir.Search(r.Context(), q)
	if err != nil {
		s.errors.HandleHTTPError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, listResponse{Items: items, Total: len(items)})
}
