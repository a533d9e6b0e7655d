package api

import (
	"encoding/json"
	"errors"
	"image/png"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/bobarin/reelcut/internal/export"
	"github.com/bobarin/reelcut/internal/kv"
	"github.com/bobarin/reelcut/internal/models"
)

type startExportRequest struct {
	Audio *models.AudioRef `json:"audio,omitempty"`
}

// StartExport handles POST /v1/projects/{id}/export — builds the export
// descriptor from the current editor state and queues it for the worker.
func (h *Handler) StartExport(w http.ResponseWriter, r *http.Request) {
	sess := h.session(w, r)
	if sess == nil {
		return
	}

	var req startExportRequest
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(w, http.StatusBadRequest, "Invalid request body")
			return
		}
	}

	project, err := h.db.GetProject(r.Context(), sess.ProjectID)
	if err != nil {
		respondError(w, http.StatusNotFound, "Project not found")
		return
	}

	desc, err := export.BuildRequest(*project, sess.Store.Scenes(), req.Audio, &h.exportOpts)
	if err != nil {
		if errors.Is(err, export.ErrBlockingDiagnostics) {
			respondJSON(w, http.StatusUnprocessableEntity, map[string]interface{}{
				"error":       "Fix validation errors before exporting",
				"diagnostics": sess.Store.Diagnostics(),
			})
			return
		}
		respondError(w, http.StatusInternalServerError, "Failed to build export request")
		return
	}

	jobID := uuid.New()
	if err := h.db.CreateExportJob(r.Context(), jobID, sess.ProjectID); err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to create export job")
		return
	}
	if err := h.queue.EnqueueExport(r.Context(), jobID, sess.ProjectID, desc); err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to enqueue export")
		return
	}

	h.kvs.Save(r.Context(), kv.ExportJobKey(jobID), models.ExportJobStatus{
		JobID:  jobID.String(),
		Status: models.ExportQueued,
	})

	respondJSON(w, http.StatusAccepted, models.ExportStartResponse{JobID: jobID.String()})
}

// ExportStatus handles GET /v1/exports/{jobId}/status
func (h *Handler) ExportStatus(w http.ResponseWriter, r *http.Request) {
	jobID, err := uuid.Parse(chi.URLParam(r, "jobId"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid job ID")
		return
	}

	// The kv mirror is the fast path; Postgres is the durable fallback.
	var status models.ExportJobStatus
	if !h.kvs.Load(r.Context(), kv.ExportJobKey(jobID), &status) {
		fromDB, err := h.db.GetExportJob(r.Context(), jobID)
		if err != nil {
			respondError(w, http.StatusNotFound, "Export job not found")
			return
		}
		status = *fromDB
	}
	respondJSON(w, http.StatusOK, status)
}

// CancelExport handles DELETE /v1/exports/{jobId}
func (h *Handler) CancelExport(w http.ResponseWriter, r *http.Request) {
	jobID, err := uuid.Parse(chi.URLParam(r, "jobId"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid job ID")
		return
	}

	var backendID string
	if !h.kvs.Load(r.Context(), kv.ExportBackendKey(jobID), &backendID) {
		respondError(w, http.StatusNotFound, "Export job not found")
		return
	}

	if err := h.render.Cancel(r.Context(), backendID); err != nil {
		respondError(w, http.StatusBadGateway, "Failed to cancel export")
		return
	}

	h.kvs.Save(r.Context(), kv.ExportJobKey(jobID), models.ExportJobStatus{
		JobID:  jobID.String(),
		Status: models.ExportFailed,
		Error:  "cancelled",
	})
	w.WriteHeader(http.StatusNoContent)
}

// ExportDownload handles GET /v1/exports/{jobId}/download — redirects to the
// render backend's download URL for the finished MP4.
func (h *Handler) ExportDownload(w http.ResponseWriter, r *http.Request) {
	jobID, err := uuid.Parse(chi.URLParam(r, "jobId"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid job ID")
		return
	}

	var status models.ExportJobStatus
	if !h.kvs.Load(r.Context(), kv.ExportJobKey(jobID), &status) {
		respondError(w, http.StatusNotFound, "Export job not found")
		return
	}
	if status.Status != models.ExportCompleted {
		respondError(w, http.StatusConflict, "Export is not finished")
		return
	}

	var backendID string
	if !h.kvs.Load(r.Context(), kv.ExportBackendKey(jobID), &backendID) {
		respondError(w, http.StatusNotFound, "Export job not found")
		return
	}

	http.Redirect(w, r, h.render.DownloadURL(backendID), http.StatusTemporaryRedirect)
}

// RenderHealth handles GET /v1/render/health — probes the render backend so
// the client can disable the export button when it is down.
func (h *Handler) RenderHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.render.Health(r.Context()))
}

// PreviewFrame handles GET /v1/projects/{id}/preview/frame?t=12.5 — renders
// the frame at the given playback time as a PNG.
func (h *Handler) PreviewFrame(w http.ResponseWriter, r *http.Request) {
	sess := h.session(w, r)
	if sess == nil {
		return
	}

	t := 0.0
	if raw := r.URL.Query().Get("t"); raw != "" {
		parsed, err := strconv.ParseFloat(raw, 64)
		if err != nil || parsed < 0 {
			respondError(w, http.StatusBadRequest, "Invalid time")
			return
		}
		t = parsed
	}

	frame := sess.Engine.RenderFrame(t)
	w.Header().Set("Content-Type", "image/png")
	if err := png.Encode(w, frame); err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to encode frame")
	}
}
