package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/bobarin/reelcut/internal/db"
	"github.com/bobarin/reelcut/internal/export"
	"github.com/bobarin/reelcut/internal/kv"
	"github.com/bobarin/reelcut/internal/models"
	"github.com/bobarin/reelcut/internal/queue"
)

type Handler struct {
	db       *db.DB
	queue    *queue.Queue
	kvs      *kv.Store
	render   *export.Client
	sessions *Sessions

	exportOpts export.Options
}

func NewHandler(database *db.DB, q *queue.Queue, kvs *kv.Store, render *export.Client, sessions *Sessions, exportOpts export.Options) *Handler {
	return &Handler{
		db:         database,
		queue:      q,
		kvs:        kvs,
		render:     render,
		sessions:   sessions,
		exportOpts: exportOpts,
	}
}

type createProjectRequest struct {
	Name           string   `json:"name"`
	TargetDuration *float64 `json:"target_duration,omitempty"`
}

// CreateProject handles POST /v1/projects
func (h *Handler) CreateProject(w http.ResponseWriter, r *http.Request) {
	var req createProjectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.Name == "" {
		respondError(w, http.StatusBadRequest, "Name is required")
		return
	}

	targetDuration := 60.0
	if req.TargetDuration != nil {
		if *req.TargetDuration <= 0 {
			respondError(w, http.StatusBadRequest, "Target duration must be positive")
			return
		}
		targetDuration = *req.TargetDuration
	}

	project := &models.Project{
		ID:             uuid.New(),
		Name:           req.Name,
		TargetDuration: targetDuration,
	}

	if err := h.db.CreateProject(r.Context(), project); err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to create project")
		return
	}

	respondJSON(w, http.StatusCreated, project)
}

// ListProjects handles GET /v1/projects
// Query params:
//   - limit:  max results per page (default 20, max 100)
//   - offset: number of results to skip (default 0)
func (h *Handler) ListProjects(w http.ResponseWriter, r *http.Request) {
	limit := 20
	if l := r.URL.Query().Get("limit"); l != "" {
		if parsed, err := strconv.Atoi(l); err == nil && parsed > 0 {
			limit = parsed
		}
	}
	if limit > 100 {
		limit = 100
	}

	offset := 0
	if o := r.URL.Query().Get("offset"); o != "" {
		if parsed, err := strconv.Atoi(o); err == nil && parsed >= 0 {
			offset = parsed
		}
	}

	projects, err := h.db.ListProjects(r.Context(), limit, offset)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to list projects")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"projects": projects,
	})
}

// GetProject handles GET /v1/projects/{id}
func (h *Handler) GetProject(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid project ID")
		return
	}

	project, err := h.db.GetProject(r.Context(), id)
	if err != nil {
		respondError(w, http.StatusNotFound, "Project not found")
		return
	}

	respondJSON(w, http.StatusOK, project)
}

// DeleteProject handles DELETE /v1/projects/{id}
func (h *Handler) DeleteProject(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid project ID")
		return
	}

	h.sessions.Close(id)

	if err := h.db.DeleteProject(r.Context(), id); err != nil {
		respondError(w, http.StatusNotFound, "Project not found")
		return
	}
	h.kvs.Remove(r.Context(), kv.SceneBackupKey(id))
	h.kvs.Remove(r.Context(), kv.HistoryBackupKey(id))

	w.WriteHeader(http.StatusNoContent)
}

// OpenProject handles POST /v1/projects/{id}/open — loads the project's
// scenes into an editor session and returns the initial state.
func (h *Handler) OpenProject(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid project ID")
		return
	}

	sess, err := h.sessions.Open(r.Context(), id)
	if err != nil {
		respondError(w, http.StatusNotFound, "Project not found")
		return
	}

	respondJSON(w, http.StatusOK, stateResponse(sess))
}

// CloseProject handles POST /v1/projects/{id}/close
func (h *Handler) CloseProject(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid project ID")
		return
	}

	h.sessions.Close(id)
	w.WriteHeader(http.StatusNoContent)
}

// GetLastProject handles GET /v1/workspace/last-project — the project most
// recently opened, so the client can restore it on reload.
func (h *Handler) GetLastProject(w http.ResponseWriter, r *http.Request) {
	var id string
	if !h.kvs.Load(r.Context(), kv.KeyLastProject, &id) {
		respondError(w, http.StatusNotFound, "No project opened yet")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"project_id": id})
}

// GetLayout handles GET /v1/workspace/layout — saved editor layout
// preferences, stored as opaque JSON for the client.
func (h *Handler) GetLayout(w http.ResponseWriter, r *http.Request) {
	var layout json.RawMessage
	if !h.kvs.Load(r.Context(), kv.KeyLayout, &layout) {
		respondJSON(w, http.StatusOK, map[string]interface{}{})
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(layout)
}

// SaveLayout handles PUT /v1/workspace/layout
func (h *Handler) SaveLayout(w http.ResponseWriter, r *http.Request) {
	var layout json.RawMessage
	if err := json.NewDecoder(r.Body).Decode(&layout); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	h.kvs.Save(r.Context(), kv.KeyLayout, layout)
	w.WriteHeader(http.StatusNoContent)
}

// session resolves the open session for the {id} URL param, writing the
// error response itself when the project is absent or not open.
func (h *Handler) session(w http.ResponseWriter, r *http.Request) *Session {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid project ID")
		return nil
	}

	sess := h.sessions.Get(id)
	if sess == nil {
		respondError(w, http.StatusConflict, "Project is not open")
		return nil
	}
	return sess
}

// stateResponse snapshots the session's editor state for the client.
func stateResponse(sess *Session) map[string]interface{} {
	store := sess.Store
	return map[string]interface{}{
		"project_id":      sess.ProjectID,
		"scenes":          store.Scenes(),
		"selected_id":     store.SelectedID(),
		"sync_status":     store.SyncStatus(),
		"diagnostics":     store.Diagnostics(),
		"target_duration": store.TargetDuration(),
		"total_duration":  sess.Engine.TotalDuration(),
		"history_index":   store.HistoryIndex(),
		"history_length":  len(store.History()),
		"can_undo":        store.CanUndo(),
		"can_redo":        store.CanRedo(),
		"is_playing":      sess.Engine.IsPlaying(),
	}
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

// Health handles GET /health
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
