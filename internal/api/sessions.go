package api

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/bobarin/reelcut/internal/db"
	"github.com/bobarin/reelcut/internal/kv"
	"github.com/bobarin/reelcut/internal/models"
	"github.com/bobarin/reelcut/internal/preview"
	"github.com/bobarin/reelcut/internal/timeline"
	"github.com/bobarin/reelcut/internal/validate"
)

// Session is one open project: its editor state store plus a preview engine
// sharing the same scene list. The store is the single writer; the engine
// follows it through a subscription.
type Session struct {
	ProjectID uuid.UUID
	Store     *timeline.Store
	Engine    *preview.Engine

	unsubscribe func()
}

// SessionConfig carries what every session needs to render and persist.
type SessionConfig struct {
	HistoryCap   int
	CanvasWidth  int
	CanvasHeight int
	FrameRate    int
	AssetsDir    string
	FontsDir     string
	TextBGDark   string
	TextBGLight  string
}

// Sessions tracks the open project sessions. Opening an already-open
// project returns the existing session so two tabs share one state.
type Sessions struct {
	mu   sync.Mutex
	open map[uuid.UUID]*Session

	db  *db.DB
	kvs *kv.Store
	cfg SessionConfig
}

func NewSessions(database *db.DB, kvs *kv.Store, cfg SessionConfig) *Sessions {
	return &Sessions{
		open: make(map[uuid.UUID]*Session),
		db:   database,
		kvs:  kvs,
		cfg:  cfg,
	}
}

// Get returns the open session for a project, or nil.
func (s *Sessions) Get(projectID uuid.UUID) *Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.open[projectID]
}

// Open loads a project's scenes and builds its session. Idempotent for an
// already-open project.
func (s *Sessions) Open(ctx context.Context, projectID uuid.UUID) (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if sess, ok := s.open[projectID]; ok {
		return sess, nil
	}

	project, err := s.db.GetProject(ctx, projectID)
	if err != nil {
		return nil, err
	}

	scenes, err := s.db.ListScenes(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to load scenes: %w", err)
	}

	// The persist callback needs the store for the history backup, so the
	// store variable is captured before NewStore assigns it.
	var store *timeline.Store
	store = timeline.NewStore(
		timeline.WithHistoryCap(s.cfg.HistoryCap),
		timeline.WithTargetDuration(project.TargetDuration),
		timeline.WithValidator(validate.Validate),
		timeline.WithPersist(func(scenes []models.Scene) {
			s.persist(projectID, store, scenes)
		}),
	)
	store.SetScenes(scenes)

	cache := preview.NewImageCache(s.cfg.AssetsDir)
	engine := preview.NewEngine(
		s.cfg.CanvasWidth, s.cfg.CanvasHeight,
		preview.WithFrameRate(s.cfg.FrameRate),
		preview.WithAssets(cache),
		preview.WithFonts(preview.NewFontSet(s.cfg.FontsDir)),
	)
	engine.SetScenes(store.Scenes())

	// Warm the asset cache in the background so the first frames render
	// real media instead of placeholders.
	go func() {
		bg, cancel := context.WithTimeout(context.Background(), 60*time.Second)
		defer cancel()
		cache.LoadBackground(bg, preview.TextBGDarkKey, s.cfg.TextBGDark)
		cache.LoadBackground(bg, preview.TextBGLightKey, s.cfg.TextBGLight)
		cache.Preload(bg, store.Scenes())
	}()

	sess := &Session{
		ProjectID: projectID,
		Store:     store,
		Engine:    engine,
	}
	sess.unsubscribe = store.Subscribe(func(changed []timeline.Slice) {
		engine.SetScenes(store.Scenes())
		go cache.Preload(context.Background(), store.Scenes())
	}, timeline.SliceScenes)

	s.open[projectID] = sess
	s.kvs.Save(ctx, kv.KeyLastProject, projectID.String())
	return sess, nil
}

// Close tears down a project session, releasing its engine and cache.
func (s *Sessions) Close(projectID uuid.UUID) {
	s.mu.Lock()
	sess := s.open[projectID]
	delete(s.open, projectID)
	s.mu.Unlock()

	if sess == nil {
		return
	}
	if sess.unsubscribe != nil {
		sess.unsubscribe()
	}
	sess.Engine.Destroy()
}

// CloseAll is the shutdown path.
func (s *Sessions) CloseAll() {
	s.mu.Lock()
	sessions := make([]*Session, 0, len(s.open))
	for _, sess := range s.open {
		sessions = append(sessions, sess)
	}
	s.open = make(map[uuid.UUID]*Session)
	s.mu.Unlock()

	for _, sess := range sessions {
		if sess.unsubscribe != nil {
			sess.unsubscribe()
		}
		sess.Engine.Destroy()
	}
}

// persist writes committed scene state through to Postgres and keeps scene
// and history backups in the session store for crash recovery. Persistence
// failures are logged; the in-memory state is already committed and the
// next edit retries.
func (s *Sessions) persist(projectID uuid.UUID, store *timeline.Store, scenes []models.Scene) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := s.db.ReplaceScenes(ctx, projectID, scenes); err != nil {
		log.Printf("[Sessions] failed to persist scenes for %s: %v", projectID, err)
	}
	s.kvs.Save(ctx, kv.SceneBackupKey(projectID), scenes)
	if store != nil {
		s.kvs.Save(ctx, kv.HistoryBackupKey(projectID), store.History())
	}
}
