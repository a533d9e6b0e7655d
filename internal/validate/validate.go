package validate

import (
	"fmt"
	"math"
	"sort"

	"github.com/bobarin/reelcut/internal/models"
	"github.com/bobarin/reelcut/internal/timeline"
)

// durationTolerance absorbs float accumulation noise when comparing the
// scene duration sum against the external target.
const durationTolerance = 1e-9

// Validate inspects a scene sequence and produces diagnostics, errors first,
// then warnings; project-level findings sort before per-scene ones within a
// tier. Pure: never mutates scenes, never persists anything. A positive
// targetDuration enables the soft total-duration match.
func Validate(scenes []models.Scene, targetDuration float64) []models.Diagnostic {
	var diags []models.Diagnostic

	for i := range scenes {
		diags = append(diags, validateScene(&scenes[i])...)
	}
	diags = append(diags, validateSequence(scenes)...)
	diags = append(diags, validateTimestamps(scenes)...)
	diags = append(diags, validateTotalDuration(scenes, targetDuration)...)

	sortDiagnostics(diags)
	return diags
}

// HasBlockingErrors reports whether any diagnostic carries error severity.
// Only errors block export/staging; warnings never do.
func HasBlockingErrors(diags []models.Diagnostic) bool {
	for i := range diags {
		if diags[i].Severity == models.SeverityError {
			return true
		}
	}
	return false
}

func validateScene(s *models.Scene) []models.Diagnostic {
	var diags []models.Diagnostic
	id := s.ID

	if s.Duration <= 0 {
		diags = append(diags, models.Diagnostic{
			Severity:   models.SeverityError,
			SceneID:    &id,
			Field:      "duration",
			Message:    fmt.Sprintf("scene %d has non-positive duration %.2fs", id, s.Duration),
			Suggestion: "set a duration greater than 0",
		})
	}

	if s.Type.IsTextual() && s.TextContent == "" {
		diags = append(diags, models.Diagnostic{
			Severity:   models.SeverityError,
			SceneID:    &id,
			Field:      "text_content",
			Message:    fmt.Sprintf("%s scene %d has no text content", s.Type, id),
			Suggestion: "add the text to display",
		})
	}

	if !s.Type.IsTextual() && s.Type != models.SceneTypeTransition && s.Prompt == "" {
		diags = append(diags, models.Diagnostic{
			Severity:   models.SeverityWarning,
			SceneID:    &id,
			Field:      "prompt",
			Message:    fmt.Sprintf("scene %d has no generation prompt", id),
			Suggestion: "add a prompt so the visual can be generated",
		})
	}

	if s.VisualFX != "" && !s.VisualFX.Valid() {
		diags = append(diags, models.Diagnostic{
			Severity:   models.SeverityError,
			SceneID:    &id,
			Field:      "visual_fx",
			Message:    fmt.Sprintf("scene %d has unknown effect %q", id, s.VisualFX),
			Suggestion: "reset to static",
			Fixable:    true,
		})
	}

	return diags
}

// validateSequence checks the dense-id invariant: sorted ids must equal
// 1..N exactly.
func validateSequence(scenes []models.Scene) []models.Diagnostic {
	if len(scenes) == 0 {
		return nil
	}

	ids := make([]int, len(scenes))
	for i := range scenes {
		ids[i] = scenes[i].ID
	}
	sort.Ints(ids)

	var diags []models.Diagnostic
	seen := make(map[int]bool, len(ids))
	duplicate := false
	for _, id := range ids {
		if seen[id] {
			duplicate = true
			break
		}
		seen[id] = true
	}
	if duplicate {
		diags = append(diags, models.Diagnostic{
			Severity:   models.SeverityError,
			Field:      "id",
			Message:    "duplicate scene ids detected",
			Suggestion: "renumber scenes",
		})
	}

	sequential := true
	for i, id := range ids {
		if id != i+1 {
			sequential = false
			break
		}
	}
	if !duplicate && !sequential {
		diags = append(diags, models.Diagnostic{
			Severity:   models.SeverityError,
			Field:      "id",
			Message:    "scene ids are not the contiguous sequence 1..N",
			Suggestion: "renumber scenes",
		})
	}

	return diags
}

// validateTimestamps compares each stored timestamp with the value the
// calculator would produce. Mismatches are recoverable on the next save,
// so they are warnings, not errors.
func validateTimestamps(scenes []models.Scene) []models.Diagnostic {
	expected := timeline.Recalculate(scenes)

	var diags []models.Diagnostic
	for i := range scenes {
		if scenes[i].Timestamp == "" || scenes[i].Timestamp == expected[i].Timestamp {
			continue
		}
		id := scenes[i].ID
		diags = append(diags, models.Diagnostic{
			Severity:   models.SeverityWarning,
			SceneID:    &id,
			Field:      "timestamp",
			Message:    fmt.Sprintf("scene %d timestamp %s does not match computed %s", id, scenes[i].Timestamp, expected[i].Timestamp),
			Suggestion: "timestamps are recalculated on save",
		})
	}
	return diags
}

func validateTotalDuration(scenes []models.Scene, targetDuration float64) []models.Diagnostic {
	if targetDuration <= 0 || len(scenes) == 0 {
		return nil
	}

	sum := timeline.TotalDuration(scenes)
	diff := targetDuration - sum
	if math.Abs(diff) <= durationTolerance {
		return nil
	}

	suggestion := fmt.Sprintf("add %gs", diff)
	if diff < 0 {
		suggestion = fmt.Sprintf("remove %gs", -diff)
	}
	return []models.Diagnostic{{
		Severity:   models.SeverityWarning,
		Field:      "duration",
		Message:    fmt.Sprintf("scene durations sum to %gs but target is %gs", sum, targetDuration),
		Suggestion: suggestion,
		Fixable:    true,
	}}
}

// AutoFix applies every fixable diagnostic and returns the corrected
// sequence: unknown effects reset to static, and a total-duration mismatch
// is absorbed by the last scene (floored at 1s).
func AutoFix(scenes []models.Scene, diags []models.Diagnostic) []models.Scene {
	out := models.CloneScenes(scenes)

	for _, d := range diags {
		if !d.Fixable {
			continue
		}
		switch d.Field {
		case "visual_fx":
			if d.SceneID == nil {
				continue
			}
			for i := range out {
				if out[i].ID == *d.SceneID {
					out[i].VisualFX = models.EffectStatic
				}
			}
		case "duration":
			if len(out) == 0 {
				continue
			}
			// The mismatch is absorbed entirely by the last scene.
			last := &out[len(out)-1]
			last.Duration += extractDiff(d)
			if last.Duration < 1 {
				last.Duration = 1
			}
		}
	}

	return timeline.Recalculate(out)
}

// extractDiff recovers the signed duration difference from a fixable
// duration diagnostic's suggestion ("add 1s" / "remove 1s").
func extractDiff(d models.Diagnostic) float64 {
	var v float64
	if _, err := fmt.Sscanf(d.Suggestion, "add %gs", &v); err == nil {
		return v
	}
	if _, err := fmt.Sscanf(d.Suggestion, "remove %gs", &v); err == nil {
		return -v
	}
	return 0
}

func sortDiagnostics(diags []models.Diagnostic) {
	rank := func(d models.Diagnostic) int {
		if d.Severity == models.SeverityError {
			return 0
		}
		return 1
	}
	sort.SliceStable(diags, func(i, j int) bool {
		if rank(diags[i]) != rank(diags[j]) {
			return rank(diags[i]) < rank(diags[j])
		}
		// Project-level findings (no scene id) sort first within a tier.
		si, sj := diags[i].SceneID, diags[j].SceneID
		if (si == nil) != (sj == nil) {
			return si == nil
		}
		if si == nil {
			return false
		}
		return *si < *sj
	})
}
