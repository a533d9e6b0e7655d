package timeline

import (
	"sync"
	"time"

	"github.com/bobarin/reelcut/internal/models"
)

// Slice names one observable piece of store state. Subscribers declare
// interest in slices and are notified synchronously when a mutation touches
// them.
type Slice string

const (
	SliceScenes      Slice = "scenes"
	SliceSelection   Slice = "selection"
	SliceHistory     Slice = "history"
	SliceSyncStatus  Slice = "syncStatus"
	SliceDiagnostics Slice = "validationErrors"
)

// DefaultHistoryCap bounds the edit history; exceeding it evicts the oldest
// entry and shifts the cursor down by one.
const DefaultHistoryCap = 20

// HistoryEntry is one committed edit: a human-readable field diff plus the
// full scene snapshot the edit produced. The snapshot is what undo/redo
// restores; the diff fields exist for display.
type HistoryEntry struct {
	Action  string         `json:"action"`
	SceneID int            `json:"scene_id,omitempty"` // 0 = structural / whole-timeline
	Field   string         `json:"field,omitempty"`
	Old     any            `json:"old,omitempty"`
	New     any            `json:"new,omitempty"`
	At      time.Time      `json:"at"`
	Scenes  []models.Scene `json:"scenes"`
}

type subscriber struct {
	slices map[Slice]bool // nil = wildcard
	cb     func(changed []Slice)
}

// Store is the single owner of the authoritative scene sequence, selection,
// sync status, diagnostics, and bounded edit history. Every scene mutation
// flows through it so derived state stays consistent. Mutations are applied
// atomically; subscriber notification is synchronous and happens only after
// all derived recomputation for the call completes.
//
// Stores are constructor-instantiated and injected, never ambient singletons,
// so tests can run independent instances side by side.
type Store struct {
	mu sync.Mutex

	scenes         []models.Scene
	selectedID     int
	syncStatus     models.SyncStatus
	diagnostics    []models.Diagnostic
	targetDuration float64

	history      []HistoryEntry
	historyIndex int
	historyCap   int

	persist   func([]models.Scene)
	validator func([]models.Scene, float64) []models.Diagnostic

	subs      map[int]subscriber
	nextSubID int
}

// Option configures a Store at construction time.
type Option func(*Store)

// WithHistoryCap overrides the default history bound.
func WithHistoryCap(n int) Option {
	return func(s *Store) {
		if n > 0 {
			s.historyCap = n
		}
	}
}

// WithTargetDuration supplies the externally-authoritative total duration
// used for the soft-match validation warning.
func WithTargetDuration(seconds float64) Option {
	return func(s *Store) { s.targetDuration = seconds }
}

// WithPersist installs the persistence side effect invoked with a snapshot
// after every committed mutation.
func WithPersist(fn func([]models.Scene)) Option {
	return func(s *Store) { s.persist = fn }
}

// WithValidator installs the diagnostic function run after every mutation,
// typically validate.Validate. Injected rather than imported so stores stay
// usable without the validator package.
func WithValidator(fn func(scenes []models.Scene, targetDuration float64) []models.Diagnostic) Option {
	return func(s *Store) { s.validator = fn }
}

func NewStore(opts ...Option) *Store {
	s := &Store{
		syncStatus: models.SyncStatusSynced,
		historyCap: DefaultHistoryCap,
		subs:       make(map[int]subscriber),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Subscribe registers interest in the given slices; with no slices the
// callback fires on every change (wildcard). Returns an unsubscribe func.
// Delivery is synchronous on the mutating goroutine.
func (s *Store) Subscribe(cb func(changed []Slice), slices ...Slice) func() {
	s.mu.Lock()
	id := s.nextSubID
	s.nextSubID++
	sub := subscriber{cb: cb}
	if len(slices) > 0 {
		sub.slices = make(map[Slice]bool, len(slices))
		for _, sl := range slices {
			sub.slices[sl] = true
		}
	}
	s.subs[id] = sub
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
}

// notify collects matching callbacks under the lock, then invokes them after
// releasing it so a subscriber may call back into the store.
func (s *Store) notify(changed ...Slice) {
	s.mu.Lock()
	var cbs []func(changed []Slice)
	for _, sub := range s.subs {
		if sub.slices == nil {
			cbs = append(cbs, sub.cb)
			continue
		}
		for _, sl := range changed {
			if sub.slices[sl] {
				cbs = append(cbs, sub.cb)
				break
			}
		}
	}
	s.mu.Unlock()

	for _, cb := range cbs {
		cb(changed)
	}
}

// Accessors

// Scenes returns a deep copy of the current scene sequence.
func (s *Store) Scenes() []models.Scene {
	s.mu.Lock()
	defer s.mu.Unlock()
	return models.CloneScenes(s.scenes)
}

// Scene returns a copy of the scene with the given id, or false.
func (s *Store) Scene(id int) (models.Scene, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.scenes {
		if s.scenes[i].ID == id {
			return s.scenes[i].Clone(), true
		}
	}
	return models.Scene{}, false
}

func (s *Store) SelectedID() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selectedID
}

func (s *Store) SyncStatus() models.SyncStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.syncStatus
}

// Diagnostics returns the validation findings for the current scene state.
func (s *Store) Diagnostics() []models.Diagnostic {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Diagnostic, len(s.diagnostics))
	copy(out, s.diagnostics)
	return out
}

func (s *Store) TargetDuration() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.targetDuration
}

func (s *Store) History() []HistoryEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]HistoryEntry, len(s.history))
	copy(out, s.history)
	return out
}

func (s *Store) HistoryIndex() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.historyIndex
}

func (s *Store) CanUndo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.historyIndex > 0
}

func (s *Store) CanRedo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.historyIndex < len(s.history)-1
}

// Mutations

// SetScenes replaces the full sequence, recalculates timestamps, resets the
// history to a single entry (the new undo floor), and persists.
func (s *Store) SetScenes(scenes []models.Scene) {
	s.mu.Lock()
	s.scenes = Recalculate(Renumber(scenes))
	s.revalidate()
	s.history = []HistoryEntry{{
		Action: "load",
		At:     time.Now(),
		Scenes: models.CloneScenes(s.scenes),
	}}
	s.historyIndex = 0
	s.syncStatus = models.SyncStatusDirty
	s.mu.Unlock()

	s.runPersist()
	s.notify(SliceScenes, SliceHistory, SliceDiagnostics, SliceSyncStatus)
}

// ReplaceScenes swaps the full sequence as a normal undoable edit, unlike
// SetScenes which resets the history floor. Used for bulk operations such
// as applying validation fixes.
func (s *Store) ReplaceScenes(action string, scenes []models.Scene) {
	s.mu.Lock()
	s.scenes = models.CloneScenes(scenes)
	s.commit(HistoryEntry{Action: action}, true)
	s.mu.Unlock()

	s.runPersist()
	s.notify(SliceScenes, SliceHistory, SliceDiagnostics, SliceSyncStatus)
}

// SetTargetDuration updates the externally supplied total duration and
// revalidates.
func (s *Store) SetTargetDuration(seconds float64) {
	s.mu.Lock()
	s.targetDuration = seconds
	s.revalidate()
	s.mu.Unlock()
	s.notify(SliceDiagnostics)
}

// Select marks a scene as selected. Selecting an unknown id clears the
// selection.
func (s *Store) Select(id int) {
	s.mu.Lock()
	found := 0
	for i := range s.scenes {
		if s.scenes[i].ID == id {
			found = id
			break
		}
	}
	s.selectedID = found
	s.mu.Unlock()
	s.notify(SliceSelection)
}

func (s *Store) SetSyncStatus(status models.SyncStatus) {
	s.mu.Lock()
	s.syncStatus = status
	s.mu.Unlock()
	s.notify(SliceSyncStatus)
}

// UpdateScene merges patch into the scene matching id. Unknown ids are a
// silent no-op returning false: the scene may already have been renumbered
// by a concurrent structural edit, which is normal UI behavior rather than
// a programming error.
func (s *Store) UpdateScene(id int, patch ScenePatch) bool {
	s.mu.Lock()
	idx := -1
	for i := range s.scenes {
		if s.scenes[i].ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		s.mu.Unlock()
		return false
	}

	field, oldVal, newVal := patch.apply(&s.scenes[idx])
	s.commit(HistoryEntry{
		Action:  "update",
		SceneID: id,
		Field:   field,
		Old:     oldVal,
		New:     newVal,
	}, false)
	s.mu.Unlock()

	s.runPersist()
	s.notify(SliceScenes, SliceHistory, SliceDiagnostics, SliceSyncStatus)
	return true
}

// AddScene appends a scene. A zero ID is assigned max(id)+1.
func (s *Store) AddScene(scene models.Scene) {
	s.mu.Lock()
	if scene.ID == 0 {
		scene.ID = s.maxID() + 1
	}
	s.scenes = append(s.scenes, scene.Clone())
	s.commit(HistoryEntry{Action: "add", SceneID: scene.ID}, false)
	s.mu.Unlock()

	s.runPersist()
	s.notify(SliceScenes, SliceHistory, SliceDiagnostics, SliceSyncStatus)
}

// RemoveScene deletes the scene and renumbers all subsequent ids so the
// sequence stays dense. Unknown ids are a silent no-op.
func (s *Store) RemoveScene(id int) bool {
	s.mu.Lock()
	idx := -1
	for i := range s.scenes {
		if s.scenes[i].ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		s.mu.Unlock()
		return false
	}

	s.scenes = append(s.scenes[:idx], s.scenes[idx+1:]...)
	s.commit(HistoryEntry{Action: "remove", SceneID: id}, true)
	if s.selectedID == id {
		s.selectedID = 0
	}
	s.mu.Unlock()

	s.runPersist()
	s.notify(SliceScenes, SliceHistory, SliceDiagnostics, SliceSyncStatus)
	return true
}

// DuplicateScene appends a copy of the scene at max(id)+1.
func (s *Store) DuplicateScene(id int) bool {
	s.mu.Lock()
	idx := -1
	for i := range s.scenes {
		if s.scenes[i].ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		s.mu.Unlock()
		return false
	}

	dup := s.scenes[idx].Clone()
	dup.ID = s.maxID() + 1
	s.scenes = append(s.scenes, dup)
	s.commit(HistoryEntry{Action: "duplicate", SceneID: id}, false)
	s.mu.Unlock()

	s.runPersist()
	s.notify(SliceScenes, SliceHistory, SliceDiagnostics, SliceSyncStatus)
	return true
}

// MoveScene shifts a scene by delta positions (negative = earlier) and
// renumbers.
func (s *Store) MoveScene(id, delta int) bool {
	s.mu.Lock()
	idx := -1
	for i := range s.scenes {
		if s.scenes[i].ID == id {
			idx = i
			break
		}
	}
	target := idx + delta
	if idx < 0 || target < 0 || target >= len(s.scenes) || delta == 0 {
		s.mu.Unlock()
		return false
	}

	moved := s.scenes[idx]
	s.scenes = append(s.scenes[:idx], s.scenes[idx+1:]...)
	rest := append([]models.Scene{}, s.scenes[target:]...)
	s.scenes = append(append(s.scenes[:target], moved), rest...)
	s.commit(HistoryEntry{Action: "move", SceneID: id, Field: "position", Old: idx + 1, New: target + 1}, true)
	s.mu.Unlock()

	s.runPersist()
	s.notify(SliceScenes, SliceHistory, SliceDiagnostics, SliceSyncStatus)
	return true
}

// SplitScene divides a scene into two halves inserted back to back. Scenes
// shorter than one second cannot be split.
func (s *Store) SplitScene(id int) bool {
	s.mu.Lock()
	idx := -1
	for i := range s.scenes {
		if s.scenes[i].ID == id {
			idx = i
			break
		}
	}
	if idx < 0 || s.scenes[idx].Duration < 1 {
		s.mu.Unlock()
		return false
	}

	first := s.scenes[idx].Clone()
	second := s.scenes[idx].Clone()
	half := first.Duration / 2
	first.Duration = half
	second.Duration = half

	rest := append([]models.Scene{}, s.scenes[idx+1:]...)
	s.scenes = append(append(s.scenes[:idx], first, second), rest...)
	s.commit(HistoryEntry{Action: "split", SceneID: id, Field: "duration", Old: half * 2, New: half}, true)
	s.mu.Unlock()

	s.runPersist()
	s.notify(SliceScenes, SliceHistory, SliceDiagnostics, SliceSyncStatus)
	return true
}

// History operations — the one mutation path exempt from history growth.

// Undo moves the cursor one step back and restores that snapshot. Returns
// false at the floor.
func (s *Store) Undo() bool {
	s.mu.Lock()
	if s.historyIndex <= 0 {
		s.mu.Unlock()
		return false
	}
	s.historyIndex--
	s.scenes = models.CloneScenes(s.history[s.historyIndex].Scenes)
	s.revalidate()
	s.syncStatus = models.SyncStatusDirty
	s.mu.Unlock()

	s.runPersist()
	s.notify(SliceScenes, SliceHistory, SliceDiagnostics, SliceSyncStatus)
	return true
}

// Redo moves the cursor one step forward. Returns false at the tail.
func (s *Store) Redo() bool {
	s.mu.Lock()
	if s.historyIndex >= len(s.history)-1 {
		s.mu.Unlock()
		return false
	}
	s.historyIndex++
	s.scenes = models.CloneScenes(s.history[s.historyIndex].Scenes)
	s.revalidate()
	s.syncStatus = models.SyncStatusDirty
	s.mu.Unlock()

	s.runPersist()
	s.notify(SliceScenes, SliceHistory, SliceDiagnostics, SliceSyncStatus)
	return true
}

// JumpToHistory sets the cursor directly and loads that snapshot.
// Out-of-range indexes are a no-op returning false.
func (s *Store) JumpToHistory(index int) bool {
	s.mu.Lock()
	if index < 0 || index >= len(s.history) {
		s.mu.Unlock()
		return false
	}
	s.historyIndex = index
	s.scenes = models.CloneScenes(s.history[index].Scenes)
	s.revalidate()
	s.syncStatus = models.SyncStatusDirty
	s.mu.Unlock()

	s.runPersist()
	s.notify(SliceScenes, SliceHistory, SliceDiagnostics, SliceSyncStatus)
	return true
}

// DeleteHistoryAt removes a non-floor entry. Deleting index 0 or an
// out-of-range index is rejected. If the removed entry was at or before the
// cursor, the cursor shifts back and the now-current snapshot is reloaded.
func (s *Store) DeleteHistoryAt(index int) bool {
	s.mu.Lock()
	if index <= 0 || index >= len(s.history) {
		s.mu.Unlock()
		return false
	}

	s.history = append(s.history[:index], s.history[index+1:]...)
	reload := false
	if index <= s.historyIndex {
		s.historyIndex--
		s.scenes = models.CloneScenes(s.history[s.historyIndex].Scenes)
		s.revalidate()
		reload = true
	}
	s.mu.Unlock()

	if reload {
		s.runPersist()
		s.notify(SliceScenes, SliceHistory, SliceDiagnostics)
	} else {
		s.notify(SliceHistory)
	}
	return true
}

// ClearHistory collapses the history to a single entry holding the current
// snapshot.
func (s *Store) ClearHistory() {
	s.mu.Lock()
	s.history = []HistoryEntry{{
		Action: "load",
		At:     time.Now(),
		Scenes: models.CloneScenes(s.scenes),
	}}
	s.historyIndex = 0
	s.mu.Unlock()
	s.notify(SliceHistory)
}

// Internals — callers hold s.mu.

// commit finalizes a mutation: renumber (structural edits), recalculate
// timestamps, revalidate, then record the resulting snapshot as a history
// entry. Committing while the cursor is not at the tail truncates the
// redo-able entries beyond it.
func (s *Store) commit(entry HistoryEntry, renumber bool) {
	if renumber {
		s.scenes = Renumber(s.scenes)
	}
	s.scenes = Recalculate(s.scenes)
	s.revalidate()
	s.syncStatus = models.SyncStatusDirty

	entry.At = time.Now()
	entry.Scenes = models.CloneScenes(s.scenes)

	s.history = append(s.history[:s.historyIndex+1], entry)
	s.historyIndex++
	if len(s.history) > s.historyCap {
		over := len(s.history) - s.historyCap
		s.history = append([]HistoryEntry{}, s.history[over:]...)
		s.historyIndex -= over
	}
}

func (s *Store) revalidate() {
	if s.validator != nil {
		s.diagnostics = s.validator(s.scenes, s.targetDuration)
	}
}

func (s *Store) maxID() int {
	max := 0
	for i := range s.scenes {
		if s.scenes[i].ID > max {
			max = s.scenes[i].ID
		}
	}
	return max
}

func (s *Store) runPersist() {
	s.mu.Lock()
	fn := s.persist
	var snap []models.Scene
	if fn != nil {
		snap = models.CloneScenes(s.scenes)
	}
	s.mu.Unlock()
	if fn != nil {
		fn(snap)
	}
}
