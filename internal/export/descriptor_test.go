package export

import (
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/bobarin/reelcut/internal/models"
	"github.com/bobarin/reelcut/internal/timeline"
)

func testProject() models.Project {
	return models.Project{ID: uuid.New(), Name: "launch teaser", TargetDuration: 10}
}

func exportableScenes() []models.Scene {
	scenes := []models.Scene{
		{ID: 1, Type: models.SceneTypeHook, Duration: 3, Prompt: "opening", ImageURL: "s1.png", VisualFX: models.EffectZoomIn},
		{ID: 2, Type: models.SceneTypeText, Duration: 4, TextContent: "the twist", TextColor: models.TextColorWhite},
		{ID: 3, Type: models.SceneTypePeak, Duration: 3, Prompt: "payoff", ImageURL: "s3.png", VisualFX: models.EffectShake},
	}
	return timeline.Recalculate(scenes)
}

func TestBuildRequestBasics(t *testing.T) {
	project := testProject()
	req, err := BuildRequest(project, exportableScenes(), nil, nil)
	if err != nil {
		t.Fatalf("BuildRequest failed: %v", err)
	}

	if req.ProjectID != project.ID {
		t.Errorf("project id = %s, want %s", req.ProjectID, project.ID)
	}

	out := req.Output
	if out.Width != 1080 || out.Height != 1920 || out.FPS != 30 {
		t.Errorf("output = %dx%d@%d, want 1080x1920@30", out.Width, out.Height, out.FPS)
	}
	if out.Codec != "libx264" || out.PixelFormat != "yuv420p" || out.Preset != "medium" || out.CRF != 23 {
		t.Errorf("encoder settings = %+v", out)
	}

	if req.Timeline.TotalDuration != 10 || req.Timeline.SceneCount != 3 {
		t.Errorf("timeline = %+v, want 10s over 3 scenes", req.Timeline)
	}
	if req.Audio != nil {
		t.Error("expected no audio block")
	}
}

func TestBuildRequestSceneLayout(t *testing.T) {
	req, err := BuildRequest(testProject(), exportableScenes(), nil, nil)
	if err != nil {
		t.Fatalf("BuildRequest failed: %v", err)
	}
	if len(req.Scenes) != 3 {
		t.Fatalf("scene count = %d, want 3", len(req.Scenes))
	}

	// Start times are cumulative
	starts := []float64{0, 3, 7}
	for i, want := range starts {
		if req.Scenes[i].StartTime != want {
			t.Errorf("scene %d start = %g, want %g", i+1, req.Scenes[i].StartTime, want)
		}
	}

	first := req.Scenes[0]
	if first.MediaType != "image" || first.MediaPath != "s1.png" {
		t.Errorf("scene 1 media = %s %q", first.MediaType, first.MediaPath)
	}
	if first.Effect == nil || first.Effect.Type != models.EffectZoomIn {
		t.Fatalf("scene 1 effect = %+v", first.Effect)
	}
	if first.Effect.StartScale != 1.0 || first.Effect.EndScale != 1.2 {
		t.Errorf("zoom scales = %g..%g, want 1.0..1.2", first.Effect.StartScale, first.Effect.EndScale)
	}

	second := req.Scenes[1]
	if second.MediaType != "text" || second.Text == nil {
		t.Fatalf("scene 2 = %+v, want text scene", second)
	}
	if second.Effect != nil {
		t.Error("text scenes carry no motion effect")
	}
	if second.Text.Content != "the twist" || second.Text.Color != models.TextColorWhite {
		t.Errorf("text block = %+v", second.Text)
	}
	if second.Text.FallbackColor != "#111111" {
		t.Errorf("fallback = %q, want #111111 behind white text", second.Text.FallbackColor)
	}

	third := req.Scenes[2]
	if third.Effect == nil || third.Effect.Intensity != 5 || third.Effect.Frequency != 20 {
		t.Errorf("shake params = %+v", third.Effect)
	}

	// Crossfades between consecutive scenes, none after the last
	if req.Scenes[0].Transition == nil || req.Scenes[1].Transition == nil {
		t.Error("missing crossfade between scenes")
	}
	if got := req.Scenes[0].Transition; got.Type != "crossfade" || got.Duration != 0.5 {
		t.Errorf("transition = %+v, want 0.5s crossfade", got)
	}
	if req.Scenes[2].Transition != nil {
		t.Error("last scene must have no transition")
	}
}

func TestBuildRequestAudio(t *testing.T) {
	audio := &models.AudioRef{Path: "vo.mp3", Duration: 14, Volume: 0.8}

	req, err := BuildRequest(testProject(), exportableScenes(), audio, nil)
	if err != nil {
		t.Fatalf("BuildRequest failed: %v", err)
	}

	if req.Audio == nil {
		t.Fatal("expected an audio block")
	}
	if req.Audio.Path != "vo.mp3" || req.Audio.Volume != 0.8 || req.Audio.FadeOut != 0.5 {
		t.Errorf("audio = %+v", req.Audio)
	}
	// Audio longer than the scenes extends the timeline
	if req.Timeline.TotalDuration != 14 {
		t.Errorf("total = %g, want 14", req.Timeline.TotalDuration)
	}
}

func TestBuildRequestMutedAudioDropped(t *testing.T) {
	audio := &models.AudioRef{Path: "vo.mp3", Duration: 8, Volume: 1, Muted: true}

	req, err := BuildRequest(testProject(), exportableScenes(), audio, nil)
	if err != nil {
		t.Fatalf("BuildRequest failed: %v", err)
	}
	if req.Audio != nil {
		t.Error("muted audio should be dropped from the descriptor")
	}
}

func TestBuildRequestRefusesBlockingErrors(t *testing.T) {
	scenes := exportableScenes()
	scenes[1].TextContent = "" // text scene without content is an error

	_, err := BuildRequest(testProject(), scenes, nil, nil)
	if !errors.Is(err, ErrBlockingDiagnostics) {
		t.Fatalf("err = %v, want ErrBlockingDiagnostics", err)
	}
}

func TestBuildRequestWarningsDoNotBlock(t *testing.T) {
	scenes := exportableScenes()
	scenes[0].Prompt = "" // warning only

	if _, err := BuildRequest(testProject(), scenes, nil, nil); err != nil {
		t.Fatalf("warnings must not block export: %v", err)
	}
}

func TestBuildRequestTextDefaults(t *testing.T) {
	scenes := []models.Scene{
		{ID: 1, Type: models.SceneTypeText, Duration: 4, TextContent: "minimal"},
	}
	scenes = timeline.Recalculate(scenes)

	req, err := BuildRequest(models.Project{ID: uuid.New(), Name: "p"}, scenes, nil, &Options{
		DarkBG: "backgrounds/dark.jpg",
	})
	if err != nil {
		t.Fatalf("BuildRequest failed: %v", err)
	}

	text := req.Scenes[0].Text
	if text.Color != models.TextColorWhite {
		t.Errorf("default color = %q, want white", text.Color)
	}
	if text.FontFamily != "Inter" || text.FontStyle != models.FontStyleBold || text.FontSize != 48 {
		t.Errorf("font defaults = %s %s %d", text.FontFamily, text.FontStyle, text.FontSize)
	}
	if text.TextAlign != models.AlignCenter || text.VerticalAlign != models.VAlignCenter {
		t.Errorf("alignment defaults = %s %s", text.TextAlign, text.VerticalAlign)
	}
	if text.BackgroundImage != "backgrounds/dark.jpg" {
		t.Errorf("background = %q", text.BackgroundImage)
	}
}

func TestBuildRequestCustomOutput(t *testing.T) {
	req, err := BuildRequest(testProject(), exportableScenes(), nil, &Options{Width: 720, Height: 1280, FPS: 24})
	if err != nil {
		t.Fatalf("BuildRequest failed: %v", err)
	}
	if req.Output.Width != 720 || req.Output.Height != 1280 || req.Output.FPS != 24 {
		t.Errorf("output = %+v", req.Output)
	}
}

func TestBuildRequestEffectFallback(t *testing.T) {
	scenes := []models.Scene{
		{ID: 1, Type: models.SceneTypeHook, Duration: 3, Prompt: "a", ImageURL: "s.png"},
	}
	scenes = timeline.Recalculate(scenes)

	req, err := BuildRequest(models.Project{ID: uuid.New(), Name: "p"}, scenes, nil, nil)
	if err != nil {
		t.Fatalf("BuildRequest failed: %v", err)
	}
	if got := req.Scenes[0].Effect.Type; got != models.EffectStatic {
		t.Errorf("empty effect exported as %q, want static", got)
	}
}
