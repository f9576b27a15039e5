package api

import (
	"net/http"

	"oder/internal/domain"
)

type lineOfBusinessDTO struct {
	ID     int64  `json:"id"`
	Name   string `json:"name"`
	Prefix string `json:"prefix"`
}

type subLineOfBusinessDTO struct {
	ID     int64  `json:"id"`
	LobID  int64  `json:"lobId"`
	Name   string `json:"name"`
	Prefix string `json:"prefix"`
}

type catalogFieldDTO struct {
	ID          int64  `json:"id"`
	FieldName   string `json:"fieldName"`
	DisplayName string `json:"displayName"`
	FieldType   string `json:"fieldType,omitempty"`
}

type operatorDTO struct {
	ID        int64  `json:"id"`
	FieldType string `json:"fieldType"`
	Symbol    string `json:"symbol"`
}

func (h *Handler) linesOfBusiness(w http.ResponseWriter, r *http.Request) {
	lobs, err := h.catalog.LinesOfBusiness(r.Context())
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	out := make([]lineOfBusinessDTO, len(lobs))
	for i, l := range lobs {
		out[i] = lineOfBusinessDTO{ID: l.ID, Name: l.Name, Prefix: l.Prefix}
	}
	h.respondJSON(w, http.StatusOK, out)
}

func (h *Handler) subLinesOfBusiness(w http.ResponseWriter, r *http.Request) {
	lobID, ok := pathID(r, "lobID")
	if !ok {
		h.respondError(w, r, domain.ErrValidation("invalid line of business id"))
		return
	}
	subs, err := h.catalog.SubLinesOfBusiness(r.Context(), lobID)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	out := make([]subLineOfBusinessDTO, len(subs))
	for i, s := range subs {
		out[i] = subLineOfBusinessDTO{ID: s.ID, LobID: s.LobID, Name: s.Name, Prefix: s.Prefix}
	}
	h.respondJSON(w, http.StatusOK, out)
}

func (h *Handler) selectFields(w http.ResponseWriter, r *http.Request) {
	lobID, ok := pathID(r, "lobID")
	if !ok {
		h.respondError(w, r, domain.ErrValidation("invalid line of business id"))
		return
	}
	fields, err := h.catalog.SelectFields(r.Context(), lobID)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	out := make([]catalogFieldDTO, len(fields))
	for i, f := range fields {
		out[i] = catalogFieldDTO{ID: f.ID, FieldName: f.FieldName, DisplayName: f.DisplayName}
	}
	h.respondJSON(w, http.StatusOK, out)
}

func (h *Handler) criteriaFields(w http.ResponseWriter, r *http.Request) {
	lobID, ok := pathID(r, "lobID")
	if !ok {
		h.respondError(w, r, domain.ErrValidation("invalid line of business id"))
		return
	}
	fields, err := h.catalog.CriteriaFields(r.Context(), lobID)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	out := make([]catalogFieldDTO, len(fields))
	for i, f := range fields {
		out[i] = catalogFieldDTO{ID: f.ID, FieldName: f.FieldName, DisplayName: f.DisplayName, FieldType: f.FieldType}
	}
	h.respondJSON(w, http.StatusOK, out)
}

func (h *Handler) criteriaValues(w http.ResponseWriter, r *http.Request) {
	fieldID, ok := pathID(r, "fieldID")
	if !ok {
		h.respondError(w, r, domain.ErrValidation("invalid criteria field id"))
		return
	}
	values, err := h.catalog.CriteriaValues(r.Context(), fieldID)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	if values == nil {
		values = []string{}
	}
	h.respondJSON(w, http.StatusOK, values)
}

func (h *Handler) operators(w http.ResponseWriter, r *http.Request) {
	fieldID, ok := pathID(r, "fieldID")
	if !ok {
		h.respondError(w, r, domain.ErrValidation("invalid criteria field id"))
		return
	}
	ops, err := h.catalog.OperatorsForField(r.Context(), fieldID)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	out := make([]operatorDTO, len(ops))
	for i, o := range ops {
		out[i] = operatorDTO{ID: o.ID, FieldType: o.FieldType, Symbol: o.Symbol}
	}
	h.respondJSON(w, http.StatusOK, out)
}
