package export

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/bobarin/reelcut/internal/models"
)

func TestClientStart(t *testing.T) {
	var gotKey string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/export" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		gotKey = r.Header.Get("X-API-Key")

		var req models.ExportRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("bad payload: %v", err)
		}
		json.NewEncoder(w).Encode(map[string]string{"job_id": "abc123"})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "secret")
	jobID, err := c.Start(context.Background(), models.ExportRequest{})
	if err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	if jobID != "abc123" {
		t.Errorf("job id = %q, want abc123", jobID)
	}
	if gotKey != "secret" {
		t.Errorf("api key header = %q, want secret", gotKey)
	}
}

func TestClientStartErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"no scenes"}`, http.StatusBadRequest)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "")
	if _, err := c.Start(context.Background(), models.ExportRequest{}); err == nil {
		t.Fatal("expected an error for a 400 response")
	}
}

func TestClientStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/export/abc123/status" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		json.NewEncoder(w).Encode(map[string]interface{}{
			"job_id":   "abc123",
			"status":   "processing",
			"progress": 40,
		})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "")
	status, err := c.Status(context.Background(), "abc123")
	if err != nil {
		t.Fatalf("Status failed: %v", err)
	}
	if status.Status != models.ExportProcessing || status.Progress != 40 {
		t.Errorf("status = %+v", status)
	}
	if status.Status.Terminal() {
		t.Error("processing reported terminal")
	}
}

func TestClientHealth(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{"status": "ok", "ffmpeg": true})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "")
	health := c.Health(context.Background())
	if !health.Available || !health.FFmpeg {
		t.Errorf("health = %+v, want available with ffmpeg", health)
	}
}

func TestClientHealthUnreachable(t *testing.T) {
	c := NewClient("http://127.0.0.1:1", "")
	if health := c.Health(context.Background()); health.Available {
		t.Error("unreachable backend reported available")
	}
}

func TestClientCancel(t *testing.T) {
	cancelled := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodDelete && r.URL.Path == "/api/export/abc123" {
			cancelled = true
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "")
	if err := c.Cancel(context.Background(), "abc123"); err != nil {
		t.Fatalf("Cancel failed: %v", err)
	}
	if !cancelled {
		t.Error("backend never saw the cancel request")
	}
}

func TestDownloadURL(t *testing.T) {
	c := NewClient("http://render:5001", "")
	want := "http://render:5001/api/export/abc123/download"
	if got := c.DownloadURL("abc123"); got != want {
		t.Errorf("DownloadURL = %q, want %q", got, want)
	}
}
