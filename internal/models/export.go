package models

import "github.com/google/uuid"

// Export descriptor DTOs — the wire shapes the render backend consumes.
// The editor's only obligation is to produce a fully-resolved descriptor;
// encoding happens on the backend.

type ExportJobState string

const (
	ExportQueued     ExportJobState = "queued"
	ExportProcessing ExportJobState = "processing"
	ExportCompleted  ExportJobState = "completed"
	ExportFailed     ExportJobState = "failed"
)

// Terminal reports whether the job state will no longer change.
func (s ExportJobState) Terminal() bool {
	return s == ExportCompleted || s == ExportFailed
}

type ExportRequest struct {
	ProjectID uuid.UUID      `json:"project_id"`
	Output    ExportOutput   `json:"output"`
	Audio     *ExportAudio   `json:"audio,omitempty"`
	Timeline  ExportTimeline `json:"timeline"`
	Scenes    []ExportScene  `json:"scenes"`
}

type ExportOutput struct {
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	FPS         int    `json:"fps"`
	Codec       string `json:"codec"`
	PixelFormat string `json:"pixel_format"`
	Preset      string `json:"preset"`
	CRF         int    `json:"crf"`
}

type ExportAudio struct {
	Path            string  `json:"path"`
	Volume          float64 `json:"volume"`
	TrimmedDuration float64 `json:"trimmed_duration,omitempty"`
	FadeOut         float64 `json:"fade_out"`
}

type ExportTimeline struct {
	TotalDuration float64 `json:"total_duration"`
	SceneCount    int     `json:"scene_count"`
}

type ExportScene struct {
	ID         int               `json:"id"`
	MediaType  string            `json:"media_type"` // "image" or "text"
	MediaPath  string            `json:"media_path,omitempty"`
	StartTime  float64           `json:"start_time"`
	Duration   float64           `json:"duration"`
	Effect     *ExportEffect     `json:"effect,omitempty"`
	Text       *ExportText       `json:"text,omitempty"`
	Transition *ExportTransition `json:"transition_out,omitempty"`
}

type ExportEffect struct {
	Type         VisualEffect `json:"type"`
	StartScale   float64      `json:"start_scale,omitempty"`
	EndScale     float64      `json:"end_scale,omitempty"`
	FadeDuration float64      `json:"fade_duration,omitempty"`
	Intensity    float64      `json:"intensity,omitempty"`
	Frequency    float64      `json:"frequency,omitempty"`
}

type ExportText struct {
	Content         string        `json:"content"`
	Color           TextColor     `json:"color"`
	FontFamily      string        `json:"font_family"`
	FontSize        int           `json:"font_size"`
	FontStyle       FontStyle     `json:"font_style"`
	TextAlign       TextAlign     `json:"text_align"`
	VerticalAlign   VerticalAlign `json:"vertical_align"`
	X               *float64      `json:"x,omitempty"` // percentage, overrides alignment
	Y               *float64      `json:"y,omitempty"`
	BackgroundImage string        `json:"background_image,omitempty"`
	FallbackColor   string        `json:"fallback_color"`
}

type ExportTransition struct {
	Type     string  `json:"type"` // "crossfade"
	Duration float64 `json:"duration"`
}

// Render backend responses

type ExportStartResponse struct {
	JobID string `json:"job_id"`
}

type ExportJobStatus struct {
	JobID    string         `json:"job_id"`
	Status   ExportJobState `json:"status"`
	Progress int            `json:"progress"` // 0–100
	Message  string         `json:"message,omitempty"`
	Error    string         `json:"error,omitempty"`
}

type RenderBackendHealth struct {
	Available bool `json:"available"`
	FFmpeg    bool `json:"ffmpeg"`
}
