package timeline

import (
	"fmt"
	"math"

	"github.com/bobarin/reelcut/internal/models"
)

// FormatTimestamp renders a second count as "m:ss", truncating fractional
// seconds (floor, not round).
func FormatTimestamp(seconds float64) string {
	if seconds < 0 {
		seconds = 0
	}
	total := int(math.Floor(seconds))
	return fmt.Sprintf("%d:%02d", total/60, total%60)
}

// Recalculate returns a copy of scenes where each scene's Timestamp is the
// formatted cumulative sum of all prior scenes' durations. Pure and
// idempotent; must run after any operation that adds, removes, reorders, or
// retimes a scene.
func Recalculate(scenes []models.Scene) []models.Scene {
	out := models.CloneScenes(scenes)
	elapsed := 0.0
	for i := range out {
		out[i].Timestamp = FormatTimestamp(elapsed)
		elapsed += out[i].Duration
	}
	return out
}

// TotalDuration sums scene durations.
func TotalDuration(scenes []models.Scene) float64 {
	total := 0.0
	for i := range scenes {
		total += scenes[i].Duration
	}
	return total
}

// Renumber repairs scene IDs into the dense sequence 1..N, preserving order.
func Renumber(scenes []models.Scene) []models.Scene {
	out := models.CloneScenes(scenes)
	for i := range out {
		out[i].ID = i + 1
	}
	return out
}
