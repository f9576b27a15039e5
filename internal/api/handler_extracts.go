package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"oder/internal/domain"
	"oder/internal/export"
	"oder/internal/service"
)

type selectedFieldDTO struct {
	FieldID      int64  `json:"fieldId"`
	DisplayOrder int    `json:"displayOrder,omitempty"`
	ColumnName   string `json:"columnName,omitempty"`
	DisplayName  string `json:"displayName,omitempty"`
}

type criteriaStepDTO struct {
	FieldID        int64   `json:"fieldId"`
	OperatorID     int64   `json:"operatorId"`
	Value          string  `json:"value"`
	Order          int     `json:"order,omitempty"`
	Connector      *string `json:"connector,omitempty"`
	ColumnName     string  `json:"columnName,omitempty"`
	DisplayName    string  `json:"displayName,omitempty"`
	FieldType      string  `json:"fieldType,omitempty"`
	OperatorSymbol string  `json:"operatorSymbol,omitempty"`
}

type extractRequest struct {
	Name        string             `json:"name"`
	Description string             `json:"description"`
	LobID       int64              `json:"lobId"`
	SubLobID    *int64             `json:"subLobId"`
	IsPublic    bool               `json:"isPublic"`
	Fields      []selectedFieldDTO `json:"fields"`
	Criteria    []criteriaStepDTO  `json:"criteria"`
}

type extractResponse struct {
	ID          int64              `json:"id"`
	Code        string             `json:"code"`
	Name        string             `json:"name"`
	Description string             `json:"description"`
	LobID       int64              `json:"lobId"`
	SubLobID    *int64             `json:"subLobId,omitempty"`
	IsPublic    bool               `json:"isPublic"`
	CreatedBy   int64              `json:"createdBy"`
	Statement   string             `json:"statement,omitempty"`
	CreatedAt   time.Time          `json:"createdAt"`
	UpdatedAt   time.Time          `json:"updatedAt"`
	Fields      []selectedFieldDTO `json:"fields"`
	Criteria    []criteriaStepDTO  `json:"criteria"`
}

type extractSummaryDTO struct {
	ID          int64  `json:"id"`
	Code        string `json:"code"`
	Name        string `json:"name"`
	Description string `json:"description"`
	LobName     string `json:"lobName"`
	SubLobName  string `json:"subLobName,omitempty"`
}

type runResponse struct {
	ExtractID   int64                `json:"extractId"`
	ExtractName string               `json:"extractName"`
	Columns     []string             `json:"columns"`
	Rows        []map[string]*string `json:"rows"`
	TotalCount  int                  `json:"totalCount"`
	CurrentPage int                  `json:"currentPage"`
	PageSize    int                  `json:"pageSize"`
	HasMore     bool                 `json:"hasMore"`
}

func definitionFromRequest(req extractRequest) domain.ExtractDefinition {
	fields := make([]domain.SelectedField, len(req.Fields))
	for i, f := range req.Fields {
		fields[i] = domain.SelectedField{FieldID: f.FieldID, DisplayOrder: i + 1}
	}
	steps := make([]domain.CriteriaStep, len(req.Criteria))
	for i, c := range req.Criteria {
		steps[i] = domain.CriteriaStep{
			FieldID:    c.FieldID,
			OperatorID: c.OperatorID,
			Value:      c.Value,
			Order:      i + 1,
			Connector:  c.Connector,
		}
	}
	return domain.ExtractDefinition{
		Name:        req.Name,
		Description: req.Description,
		SubLobID:    req.SubLobID,
		Fields:      fields,
		Steps:       steps,
	}
}

func extractResponseFromDetail(d *service.ExtractDetail) extractResponse {
	fields := make([]selectedFieldDTO, len(d.Fields))
	for i, f := range d.Fields {
		fields[i] = selectedFieldDTO{
			FieldID:      f.FieldID,
			DisplayOrder: f.DisplayOrder,
			ColumnName:   f.ColumnName,
			DisplayName:  f.DisplayName,
		}
	}
	criteria := make([]criteriaStepDTO, len(d.Steps))
	for i, s := range d.Steps {
		criteria[i] = criteriaStepDTO{
			FieldID:        s.FieldID,
			OperatorID:     s.OperatorID,
			Value:          s.Value,
			Order:          s.Order,
			Connector:      s.Connector,
			ColumnName:     s.ColumnName,
			DisplayName:    s.DisplayName,
			FieldType:      s.FieldType,
			OperatorSymbol: s.OperatorSymbol,
		}
	}
	return extractResponse{
		ID:          d.Extract.ID,
		Code:        d.Extract.Code,
		Name:        d.Extract.Name,
		Description: d.Extract.Description,
		LobID:       d.Extract.LobID,
		SubLobID:    d.Extract.SubLobID,
		IsPublic:    d.Extract.IsPublic,
		CreatedBy:   d.Extract.CreatedBy,
		Statement:   d.Extract.Statement,
		CreatedAt:   d.Extract.CreatedAt,
		UpdatedAt:   d.Extract.UpdatedAt,
		Fields:      fields,
		Criteria:    criteria,
	}
}

func (h *Handler) listExtracts(w http.ResponseWriter, r *http.Request) {
	list, err := h.extracts.List(r.Context(), r.URL.Query().Get("search"))
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	out := make([]extractSummaryDTO, len(list))
	for i, s := range list {
		out[i] = extractSummaryDTO{
			ID:          s.ID,
			Code:        s.Code,
			Name:        s.Name,
			Description: s.Description,
			LobName:     s.LobName,
			SubLobName:  s.SubLobName,
		}
	}
	h.respondJSON(w, http.StatusOK, out)
}

func (h *Handler) createExtract(w http.ResponseWriter, r *http.Request) {
	var req extractRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, r, domain.ErrValidation("invalid request body"))
		return
	}

	detail, err := h.extracts.Create(r.Context(), service.CreateExtractRequest{
		LobID:      req.LobID,
		IsPublic:   req.IsPublic,
		Definition: definitionFromRequest(req),
	})
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	h.respondJSON(w, http.StatusCreated, extractResponseFromDetail(detail))
}

func (h *Handler) getExtract(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "extractID")
	if !ok {
		h.respondError(w, r, domain.ErrValidation("invalid extract id"))
		return
	}
	detail, err := h.extracts.Get(r.Context(), id)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	h.respondJSON(w, http.StatusOK, extractResponseFromDetail(detail))
}

func (h *Handler) updateExtract(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "extractID")
	if !ok {
		h.respondError(w, r, domain.ErrValidation("invalid extract id"))
		return
	}
	var req extractRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, r, domain.ErrValidation("invalid request body"))
		return
	}

	detail, err := h.extracts.Update(r.Context(), id, definitionFromRequest(req))
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	h.respondJSON(w, http.StatusOK, extractResponseFromDetail(detail))
}

func (h *Handler) runExtract(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "extractID")
	if !ok {
		h.respondError(w, r, domain.ErrValidation("invalid extract id"))
		return
	}

	page := domain.PageRequest{}
	var err error
	if v := r.URL.Query().Get("page"); v != "" {
		if page.Page, err = strconv.Atoi(v); err != nil {
			h.respondError(w, r, domain.ErrValidation("page must be an integer"))
			return
		}
	}
	if v := r.URL.Query().Get("pageSize"); v != "" {
		if page.PageSize, err = strconv.Atoi(v); err != nil {
			h.respondError(w, r, domain.ErrValidation("pageSize must be an integer"))
			return
		}
	}

	result, err := h.runs.Run(r.Context(), id, page)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	h.respondJSON(w, http.StatusOK, runResponse{
		ExtractID:   result.ExtractID,
		ExtractName: result.ExtractName,
		Columns:     result.Columns,
		Rows:        result.Rows,
		TotalCount:  result.TotalCount,
		CurrentPage: result.CurrentPage,
		PageSize:    result.PageSize,
		HasMore:     result.HasMore,
	})
}

func (h *Handler) exportExtract(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "extractID")
	if !ok {
		h.respondError(w, r, domain.ErrValidation("invalid extract id"))
		return
	}

	result, err := h.runs.Snapshot(r.Context(), id)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	delimiter, extension, err := h.configs.Output(r.Context(), id)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	detail, err := h.extracts.Get(r.Context(), id)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	contentType := "text/plain"
	if delimiter == "," {
		contentType = "text/csv"
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition",
		`attachment; filename="`+export.Filename(detail.Extract.Code, extension, time.Now())+`"`)
	if err := export.Write(w, delimiter, result.Columns, result.Rows); err != nil {
		h.logger.Error("export write failed", "extract_id", id, "error", err)
	}
}
