package timeline

import (
	"testing"

	"github.com/bobarin/reelcut/internal/models"
)

func TestFormatTimestamp(t *testing.T) {
	cases := []struct {
		seconds float64
		want    string
	}{
		{0, "0:00"},
		{7, "0:07"},
		{59, "0:59"},
		{59.9, "0:59"}, // floor, never round up
		{60, "1:00"},
		{65, "1:05"},
		{125.4, "2:05"},
		{600, "10:00"},
		{-3, "0:00"},
	}

	for _, c := range cases {
		if got := FormatTimestamp(c.seconds); got != c.want {
			t.Errorf("FormatTimestamp(%g) = %q, want %q", c.seconds, got, c.want)
		}
	}
}

func TestRecalculate(t *testing.T) {
	scenes := []models.Scene{
		{ID: 1, Type: models.SceneTypeHook, Duration: 3},
		{ID: 2, Type: models.SceneTypeBuildup, Duration: 4},
		{ID: 3, Type: models.SceneTypePeak, Duration: 3},
	}

	out := Recalculate(scenes)

	want := []string{"0:00", "0:03", "0:07"}
	for i, w := range want {
		if out[i].Timestamp != w {
			t.Errorf("scene %d timestamp = %q, want %q", i+1, out[i].Timestamp, w)
		}
	}

	// Input must not be mutated
	if scenes[0].Timestamp != "" {
		t.Errorf("Recalculate mutated its input: %q", scenes[0].Timestamp)
	}
}

func TestRecalculateIdempotent(t *testing.T) {
	scenes := []models.Scene{
		{ID: 1, Duration: 62.5},
		{ID: 2, Duration: 2.5},
	}

	once := Recalculate(scenes)
	twice := Recalculate(once)

	for i := range once {
		if once[i].Timestamp != twice[i].Timestamp {
			t.Errorf("scene %d: %q != %q after second pass", i+1, once[i].Timestamp, twice[i].Timestamp)
		}
	}
}

func TestRecalculateEmpty(t *testing.T) {
	if out := Recalculate(nil); len(out) != 0 {
		t.Errorf("expected empty result, got %d scenes", len(out))
	}
}

func TestTotalDuration(t *testing.T) {
	scenes := []models.Scene{
		{ID: 1, Duration: 3},
		{ID: 2, Duration: 4.5},
	}
	if got := TotalDuration(scenes); got != 7.5 {
		t.Errorf("TotalDuration = %g, want 7.5", got)
	}
	if got := TotalDuration(nil); got != 0 {
		t.Errorf("TotalDuration(nil) = %g, want 0", got)
	}
}

func TestRenumber(t *testing.T) {
	scenes := []models.Scene{
		{ID: 2, Duration: 1},
		{ID: 7, Duration: 2},
		{ID: 3, Duration: 3},
	}

	out := Renumber(scenes)
	for i := range out {
		if out[i].ID != i+1 {
			t.Errorf("position %d has id %d, want %d", i, out[i].ID, i+1)
		}
	}

	// Order preserved by duration marker
	if out[1].Duration != 2 {
		t.Errorf("Renumber reordered scenes")
	}
}
