package worker

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/bobarin/reelcut/internal/db"
	"github.com/bobarin/reelcut/internal/export"
	"github.com/bobarin/reelcut/internal/kv"
	"github.com/bobarin/reelcut/internal/models"
	"github.com/bobarin/reelcut/internal/queue"
)

// Worker drains the export queue: each job is submitted to the render
// backend, then polled until it reaches a terminal state. Observed status
// is recorded in Postgres and mirrored into the session store so the API
// can answer status requests without hitting the backend.
type Worker struct {
	db       *db.DB
	queue    *queue.Queue
	render   *export.Client
	sessions *kv.Store

	pollInterval time.Duration
}

func New(database *db.DB, q *queue.Queue, render *export.Client, sessions *kv.Store) *Worker {
	return &Worker{
		db:           database,
		queue:        q,
		render:       render,
		sessions:     sessions,
		pollInterval: 2 * time.Second,
	}
}

// Start begins processing export jobs. Blocks until ctx is cancelled.
func (w *Worker) Start(ctx context.Context, concurrency int) {
	log.Printf("Worker started with concurrency: %d", concurrency)

	for i := 0; i < concurrency; i++ {
		go w.processQueue(ctx)
	}

	<-ctx.Done()
	log.Println("Worker shutting down...")
}

func (w *Worker) processQueue(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
			job, err := w.queue.Dequeue(ctx, 5*time.Second)
			if err != nil {
				log.Printf("Error dequeuing export job: %v", err)
				continue
			}

			if job == nil {
				continue // No job available, retry
			}

			log.Printf("Processing export job %s (project: %s)", job.ID, job.ProjectID)

			if err := w.handleExport(ctx, job); err != nil {
				log.Printf("Export job %s failed: %v", job.ID, err)
				w.recordStatus(ctx, job, models.ExportJobStatus{
					JobID:  job.ID.String(),
					Status: models.ExportFailed,
					Error:  err.Error(),
				})
			} else {
				log.Printf("Export job %s completed successfully", job.ID)
			}
		}
	}
}

// handleExport submits the descriptor and mirrors backend progress until
// the job finishes or ctx ends.
func (w *Worker) handleExport(ctx context.Context, job *queue.Job) error {
	w.recordStatus(ctx, job, models.ExportJobStatus{
		JobID:  job.ID.String(),
		Status: models.ExportQueued,
	})

	backendID, err := w.render.Start(ctx, job.Request)
	if err != nil {
		return fmt.Errorf("failed to submit render job: %w", err)
	}
	if w.sessions != nil {
		w.sessions.Save(ctx, kv.ExportBackendKey(job.ID), backendID)
	}

	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			status, err := w.render.Status(ctx, backendID)
			if err != nil {
				log.Printf("Export job %s status poll failed: %v", job.ID, err)
				continue
			}

			// Report under our job id; the backend id stays internal.
			status.JobID = job.ID.String()
			w.recordStatus(ctx, job, status)

			if status.Status.Terminal() {
				if status.Status == models.ExportFailed {
					return fmt.Errorf("render backend reported failure: %s", status.Error)
				}
				return nil
			}
		}
	}
}

func (w *Worker) recordStatus(ctx context.Context, job *queue.Job, status models.ExportJobStatus) {
	if w.db != nil {
		if err := w.db.UpdateExportJob(ctx, job.ID, status.Status, status.Progress, status.Error); err != nil {
			log.Printf("Failed to record export job status: %v", err)
		}
	}
	if w.sessions != nil {
		w.sessions.Save(ctx, kv.ExportJobKey(job.ID), status)
	}
}
