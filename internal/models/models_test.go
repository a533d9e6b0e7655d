package models

import (
	"encoding/json"
	"testing"
)

func TestSceneTypeIsTextual(t *testing.T) {
	textual := []SceneType{SceneTypeText, SceneTypeCTA}
	for _, st := range textual {
		if !st.IsTextual() {
			t.Errorf("%s should be textual", st)
		}
	}

	media := []SceneType{
		SceneTypeHook, SceneTypeBuildup, SceneTypePeak,
		SceneTypeTransition, SceneTypeSpeaker, SceneTypeFinalStatement,
	}
	for _, st := range media {
		if st.IsTextual() {
			t.Errorf("%s should not be textual", st)
		}
	}
}

func TestVisualEffectValid(t *testing.T) {
	valid := []VisualEffect{
		EffectZoomIn, EffectZoomOut, EffectPanLeft, EffectPanRight,
		EffectPanUp, EffectPanDown, EffectFade, EffectStatic, EffectShake,
	}
	for _, e := range valid {
		if !e.Valid() {
			t.Errorf("%s should be valid", e)
		}
	}

	if VisualEffect("spin").Valid() {
		t.Error("unknown effect reported valid")
	}
	if VisualEffect("").Valid() {
		t.Error("empty effect reported valid")
	}
}

func TestMediaRefPrefersMediaURL(t *testing.T) {
	s := Scene{ImageURL: "image.png", MediaURL: "media.png"}
	if got := s.MediaRef(); got != "media.png" {
		t.Errorf("MediaRef = %q, want media.png", got)
	}

	s.MediaURL = ""
	if got := s.MediaRef(); got != "image.png" {
		t.Errorf("MediaRef = %q, want image.png", got)
	}
}

func TestSceneCloneIsDeep(t *testing.T) {
	x := 42.0
	s := Scene{ID: 1, TextX: &x}

	c := s.Clone()
	*c.TextX = 99

	if *s.TextX != 42 {
		t.Errorf("Clone shares TextX: %g", *s.TextX)
	}
}

func TestCloneScenesNil(t *testing.T) {
	if CloneScenes(nil) != nil {
		t.Error("CloneScenes(nil) should be nil")
	}
}

func TestSetTrimmedDuration(t *testing.T) {
	cases := []struct {
		natural float64
		in      float64
		want    float64
	}{
		{30, 10.3, 10.5}, // snaps to nearest half second
		{30, 10.2, 10},
		{30, 0.2, 1},  // floor of one second
		{30, 45, 30},  // capped at natural length
		{0, 45, 45},   // unknown natural length, no cap
	}
	for _, c := range cases {
		a := AudioRef{Duration: c.natural}
		a.SetTrimmedDuration(c.in)
		if a.TrimmedDuration != c.want {
			t.Errorf("SetTrimmedDuration(%g) with natural %g = %g, want %g",
				c.in, c.natural, a.TrimmedDuration, c.want)
		}
	}
}

func TestEffectiveDuration(t *testing.T) {
	a := &AudioRef{Duration: 30}
	if got := a.EffectiveDuration(); got != 30 {
		t.Errorf("untrimmed = %g, want 30", got)
	}

	a.TrimmedDuration = 12.5
	if got := a.EffectiveDuration(); got != 12.5 {
		t.Errorf("trimmed = %g, want 12.5", got)
	}

	var missing *AudioRef
	if got := missing.EffectiveDuration(); got != 0 {
		t.Errorf("nil audio = %g, want 0", got)
	}
}

func TestSceneJSONRoundTrip(t *testing.T) {
	x := 33.0
	s := Scene{
		ID:          1,
		Type:        SceneTypeText,
		Duration:    4,
		TextContent: "hello",
		TextColor:   TextColorWhite,
		TextX:       &x,
	}

	data, err := json.Marshal(s)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}

	var back Scene
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if back.TextContent != "hello" || back.TextX == nil || *back.TextX != 33 {
		t.Errorf("round trip lost fields: %+v", back)
	}
}

func TestExportJobStateTerminal(t *testing.T) {
	if ExportQueued.Terminal() || ExportProcessing.Terminal() {
		t.Error("active states reported terminal")
	}
	if !ExportCompleted.Terminal() || !ExportFailed.Terminal() {
		t.Error("finished states not terminal")
	}
}
