package httpapi

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"dongmun.org/internal/audit"
	"dongmun.org/internal/bylaws"
	"dongmun.org/internal/member"
)

type createBylawRequest struct {
	Version       string `json:"version"`
	Title         string `json:"title"`
	Content       string `json:"content"`
	EffectiveDate string `json:"effective_date"`
}

type amendBylawRequest struct {
	Version       *string `json:"version"`
	Title         *string `json:"title"`
	Content       *string `json:"content"`
	EffectiveDate *string `json:"effective_date"`
}

func (a *API) handleBylawsCollection(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		a.listBylaws(w, r)
	case http.MethodPost:
		a.createBylaw(w, r)
	default:
		methodNotAllowed(w, r, http.MethodGet, http.MethodPost)
	}
}

func (a *API) handleBylawsActive(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}
	b, err := a.bylaws.GetActive(r.Context())
	if err != nil {
		handleBylawError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, b)
}

func (a *API) handleBylawResource(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/v1/bylaws/")
	if path == "" {
		writeError(w, r, http.StatusNotFound, "resource not found")
		return
	}

	if id, found := strings.CutSuffix(path, "/activate"); found {
		if id == "" {
			writeError(w, r, http.StatusNotFound, "resource not found")
			return
		}
		if r.Method != http.MethodPost {
			methodNotAllowed(w, r, http.MethodPost)
			return
		}
		a.activateBylaw(w, r, id)
		return
	}

	if strings.Contains(path, "/") {
		writeError(w, r, http.StatusNotFound, "resource not found")
		return
	}

	switch r.Method {
	case http.MethodPatch:
		a.amendBylaw(w, r, path)
	default:
		methodNotAllowed(w, r, http.MethodPatch)
	}
}

func (a *API) listBylaws(w http.ResponseWriter, r *http.Request) {
	items, err := a.bylaws.ListHistory(r.Context())
	if err != nil {
		handleBylawError(w, r, err)
		return
	}
	if items == nil {
		items = []bylaws.Bylaw{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": items})
}

func (a *API) createBylaw(w http.ResponseWriter, r *http.Request) {
	actor, ok := a.requireCapability(w, r, member.CapManageBylaws)
	if !ok {
		return
	}

	var req createBylawRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	effective, err := time.Parse("2006-01-02", strings.TrimSpace(req.EffectiveDate))
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "effective_date must be YYYY-MM-DD")
		return
	}

	b, err := a.bylaws.Create(r.Context(), bylaws.CreateInput{
		Version:       req.Version,
		Title:         req.Title,
		Content:       req.Content,
		EffectiveDate: effective,
		AuthorID:      actor.ID,
	})
	if err != nil {
		handleBylawError(w, r, err)
		return
	}

	_ = audit.LogEvent(r.Context(), "bylaws.revision.create", map[string]any{
		"bylaw_id": b.ID,
		"version":  b.Version,
	})

	w.Header().Set("Location", "/v1/bylaws/"+b.ID)
	writeJSON(w, http.StatusCreated, b)
}

func (a *API) amendBylaw(w http.ResponseWriter, r *http.Request, id string) {
	if _, ok := a.requireCapability(w, r, member.CapManageBylaws); !ok {
		return
	}

	var req amendBylawRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	upd := bylaws.Update{
		Version: req.Version,
		Title:   req.Title,
		Content: req.Content,
	}
	if req.EffectiveDate != nil {
		effective, err := time.Parse("2006-01-02", strings.TrimSpace(*req.EffectiveDate))
		if err != nil {
			writeError(w, r, http.StatusBadRequest, "effective_date must be YYYY-MM-DD")
			return
		}
		upd.EffectiveDate = &effective
	}

	b, err := a.bylaws.Amend(r.Context(), id, upd)
	if err != nil {
		handleBylawError(w, r, err)
		return
	}

	_ = audit.LogEvent(r.Context(), "bylaws.revision.amend", map[string]any{
		"bylaw_id": b.ID,
		"version":  b.Version,
	})

	writeJSON(w, http.StatusOK, b)
}

func (a *API) activateBylaw(w http.ResponseWriter, r *http.Request, id string) {
	if _, ok := a.requireCapability(w, r, member.CapManageBylaws); !ok {
		return
	}

	if err := a.bylaws.Activate(r.Context(), id); err != nil {
		handleBylawError(w, r, err)
		return
	}

	_ = audit.LogEvent(r.Context(), "bylaws.revision.activate", map[string]any{
		"bylaw_id": id,
	})

	writeJSON(w, http.StatusOK, map[string]any{"status": "activated", "id": id})
}

func handleBylawError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, bylaws.ErrInvalidInput):
		writeError(w, r, http.StatusBadRequest, err.Error())
	case errors.Is(err, bylaws.ErrNotFound):
		writeError(w, r, http.StatusNotFound, err.Error())
	case errors.Is(err, bylaws.ErrNoActive):
		writeError(w, r, http.StatusNotFound, err.Error())
	default:
		writeError(w, r, http.StatusInternalServerError, "internal error")
	}
}
