package kv

import "github.com/google/uuid"

const (
	KeyLastProject = "editor:last_project"
	KeyLayout      = "editor:layout"
)

// SceneBackupKey holds the latest committed scene list for crash recovery.
func SceneBackupKey(projectID uuid.UUID) string {
	return "editor:scenes:" + projectID.String()
}

// HistoryBackupKey holds the undo history so a reload can restore it.
func HistoryBackupKey(projectID uuid.UUID) string {
	return "editor:history:" + projectID.String()
}

// ExportJobKey holds the last observed status of a render job.
func ExportJobKey(jobID uuid.UUID) string {
	return "editor:export:" + jobID.String()
}

// ExportBackendKey maps our export job id to the render backend's own id,
// needed to cancel a job or build its download URL.
func ExportBackendKey(jobID uuid.UUID) string {
	return "editor:export_backend:" + jobID.String()
}
