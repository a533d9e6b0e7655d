package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/bobarin/reelcut/internal/models"
	"github.com/bobarin/reelcut/internal/timeline"
	"github.com/bobarin/reelcut/internal/validate"
)

// GetScenes handles GET /v1/projects/{id}/scenes
func (h *Handler) GetScenes(w http.ResponseWriter, r *http.Request) {
	sess := h.session(w, r)
	if sess == nil {
		return
	}
	respondJSON(w, http.StatusOK, stateResponse(sess))
}

// AddScene handles POST /v1/projects/{id}/scenes
func (h *Handler) AddScene(w http.ResponseWriter, r *http.Request) {
	sess := h.session(w, r)
	if sess == nil {
		return
	}

	var scene models.Scene
	if err := json.NewDecoder(r.Body).Decode(&scene); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if scene.Duration <= 0 {
		respondError(w, http.StatusBadRequest, "Duration must be positive")
		return
	}

	sess.Store.AddScene(scene)
	respondJSON(w, http.StatusCreated, stateResponse(sess))
}

// UpdateScene handles PATCH /v1/projects/{id}/scenes/{sceneId}
func (h *Handler) UpdateScene(w http.ResponseWriter, r *http.Request) {
	sess := h.session(w, r)
	if sess == nil {
		return
	}

	sceneID, err := strconv.Atoi(chi.URLParam(r, "sceneId"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid scene ID")
		return
	}

	var patch timeline.ScenePatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if patch.Duration != nil && *patch.Duration <= 0 {
		respondError(w, http.StatusBadRequest, "Duration must be positive")
		return
	}

	if !sess.Store.UpdateScene(sceneID, patch) {
		respondError(w, http.StatusNotFound, "Scene not found")
		return
	}
	respondJSON(w, http.StatusOK, stateResponse(sess))
}

// RemoveScene handles DELETE /v1/projects/{id}/scenes/{sceneId}
func (h *Handler) RemoveScene(w http.ResponseWriter, r *http.Request) {
	sess := h.session(w, r)
	if sess == nil {
		return
	}

	sceneID, err := strconv.Atoi(chi.URLParam(r, "sceneId"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid scene ID")
		return
	}

	if !sess.Store.RemoveScene(sceneID) {
		respondError(w, http.StatusNotFound, "Scene not found")
		return
	}
	respondJSON(w, http.StatusOK, stateResponse(sess))
}

// DuplicateScene handles POST /v1/projects/{id}/scenes/{sceneId}/duplicate
func (h *Handler) DuplicateScene(w http.ResponseWriter, r *http.Request) {
	sess := h.session(w, r)
	if sess == nil {
		return
	}

	sceneID, err := strconv.Atoi(chi.URLParam(r, "sceneId"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid scene ID")
		return
	}

	if !sess.Store.DuplicateScene(sceneID) {
		respondError(w, http.StatusNotFound, "Scene not found")
		return
	}
	respondJSON(w, http.StatusOK, stateResponse(sess))
}

type moveSceneRequest struct {
	Delta int `json:"delta"`
}

// MoveScene handles POST /v1/projects/{id}/scenes/{sceneId}/move
func (h *Handler) MoveScene(w http.ResponseWriter, r *http.Request) {
	sess := h.session(w, r)
	if sess == nil {
		return
	}

	sceneID, err := strconv.Atoi(chi.URLParam(r, "sceneId"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid scene ID")
		return
	}

	var req moveSceneRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	// Moving past either end is a silent no-op, so a missing scene is the
	// only failure.
	if !sess.Store.MoveScene(sceneID, req.Delta) {
		if _, ok := sess.Store.Scene(sceneID); !ok {
			respondError(w, http.StatusNotFound, "Scene not found")
			return
		}
	}
	respondJSON(w, http.StatusOK, stateResponse(sess))
}

// SplitScene handles POST /v1/projects/{id}/scenes/{sceneId}/split
func (h *Handler) SplitScene(w http.ResponseWriter, r *http.Request) {
	sess := h.session(w, r)
	if sess == nil {
		return
	}

	sceneID, err := strconv.Atoi(chi.URLParam(r, "sceneId"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid scene ID")
		return
	}

	if !sess.Store.SplitScene(sceneID) {
		respondError(w, http.StatusUnprocessableEntity, "Scene cannot be split")
		return
	}
	respondJSON(w, http.StatusOK, stateResponse(sess))
}

type selectRequest struct {
	SceneID int `json:"scene_id"` // 0 clears the selection
}

// SelectScene handles POST /v1/projects/{id}/select
func (h *Handler) SelectScene(w http.ResponseWriter, r *http.Request) {
	sess := h.session(w, r)
	if sess == nil {
		return
	}

	var req selectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	sess.Store.Select(req.SceneID)
	respondJSON(w, http.StatusOK, stateResponse(sess))
}

// ---------------------------------------------------------------------------
// History
// ---------------------------------------------------------------------------

// GetHistory handles GET /v1/projects/{id}/history
func (h *Handler) GetHistory(w http.ResponseWriter, r *http.Request) {
	sess := h.session(w, r)
	if sess == nil {
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"entries": sess.Store.History(),
		"index":   sess.Store.HistoryIndex(),
	})
}

// Undo handles POST /v1/projects/{id}/undo
func (h *Handler) Undo(w http.ResponseWriter, r *http.Request) {
	sess := h.session(w, r)
	if sess == nil {
		return
	}
	sess.Store.Undo()
	respondJSON(w, http.StatusOK, stateResponse(sess))
}

// Redo handles POST /v1/projects/{id}/redo
func (h *Handler) Redo(w http.ResponseWriter, r *http.Request) {
	sess := h.session(w, r)
	if sess == nil {
		return
	}
	sess.Store.Redo()
	respondJSON(w, http.StatusOK, stateResponse(sess))
}

// JumpToHistory handles POST /v1/projects/{id}/history/{index}
func (h *Handler) JumpToHistory(w http.ResponseWriter, r *http.Request) {
	sess := h.session(w, r)
	if sess == nil {
		return
	}

	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid history index")
		return
	}

	sess.Store.JumpToHistory(index)
	respondJSON(w, http.StatusOK, stateResponse(sess))
}

// DeleteHistoryEntry handles DELETE /v1/projects/{id}/history/{index}
func (h *Handler) DeleteHistoryEntry(w http.ResponseWriter, r *http.Request) {
	sess := h.session(w, r)
	if sess == nil {
		return
	}

	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid history index")
		return
	}

	if !sess.Store.DeleteHistoryAt(index) {
		respondError(w, http.StatusUnprocessableEntity, "History entry cannot be deleted")
		return
	}
	respondJSON(w, http.StatusOK, stateResponse(sess))
}

// ClearHistory handles DELETE /v1/projects/{id}/history
func (h *Handler) ClearHistory(w http.ResponseWriter, r *http.Request) {
	sess := h.session(w, r)
	if sess == nil {
		return
	}
	sess.Store.ClearHistory()
	respondJSON(w, http.StatusOK, stateResponse(sess))
}

// ---------------------------------------------------------------------------
// Validation
// ---------------------------------------------------------------------------

// GetValidation handles GET /v1/projects/{id}/validation
func (h *Handler) GetValidation(w http.ResponseWriter, r *http.Request) {
	sess := h.session(w, r)
	if sess == nil {
		return
	}

	diags := sess.Store.Diagnostics()
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"diagnostics": diags,
		"blocking":    validate.HasBlockingErrors(diags),
	})
}

// AutoFix handles POST /v1/projects/{id}/validation/fix — applies every
// fixable diagnostic and commits the result as one history entry.
func (h *Handler) AutoFix(w http.ResponseWriter, r *http.Request) {
	sess := h.session(w, r)
	if sess == nil {
		return
	}

	store := sess.Store
	fixed := validate.AutoFix(store.Scenes(), store.Diagnostics())
	store.ReplaceScenes("autofix", fixed)
	respondJSON(w, http.StatusOK, stateResponse(sess))
}
