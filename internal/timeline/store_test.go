package timeline

import (
	"testing"

	"github.com/bobarin/reelcut/internal/models"
)

func threeScenes() []models.Scene {
	return []models.Scene{
		{ID: 1, Type: models.SceneTypeHook, Duration: 3, Prompt: "opening shot"},
		{ID: 2, Type: models.SceneTypeBuildup, Duration: 4, Prompt: "rising tension"},
		{ID: 3, Type: models.SceneTypePeak, Duration: 3, Prompt: "payoff"},
	}
}

func TestSetScenesResetsHistory(t *testing.T) {
	s := NewStore()
	s.SetScenes(threeScenes())
	s.UpdateScene(1, ScenePatch{Duration: Float(5)})

	s.SetScenes(threeScenes())

	if got := len(s.History()); got != 1 {
		t.Fatalf("history length = %d, want 1", got)
	}
	if s.CanUndo() {
		t.Error("expected no undo after SetScenes")
	}
	if s.HistoryIndex() != 0 {
		t.Errorf("history index = %d, want 0", s.HistoryIndex())
	}
}

func TestSetScenesRecalculatesTimestamps(t *testing.T) {
	s := NewStore()
	s.SetScenes(threeScenes())

	scenes := s.Scenes()
	want := []string{"0:00", "0:03", "0:07"}
	for i, w := range want {
		if scenes[i].Timestamp != w {
			t.Errorf("scene %d timestamp = %q, want %q", i+1, scenes[i].Timestamp, w)
		}
	}
}

func TestUpdateSceneCommitsHistory(t *testing.T) {
	s := NewStore()
	s.SetScenes(threeScenes())

	if !s.UpdateScene(2, ScenePatch{Duration: Float(6)}) {
		t.Fatal("UpdateScene returned false for existing scene")
	}

	history := s.History()
	if len(history) != 2 {
		t.Fatalf("history length = %d, want 2", len(history))
	}
	entry := history[1]
	if entry.Action != "update" || entry.Field != "duration" || entry.SceneID != 2 {
		t.Errorf("unexpected entry: action=%q field=%q scene=%d", entry.Action, entry.Field, entry.SceneID)
	}
	if entry.Old != 4.0 || entry.New != 6.0 {
		t.Errorf("diff = %v → %v, want 4 → 6", entry.Old, entry.New)
	}

	// Timestamps downstream of the retimed scene shift
	if got := s.Scenes()[2].Timestamp; got != "0:09" {
		t.Errorf("scene 3 timestamp = %q, want 0:09", got)
	}
}

func TestUpdateSceneMultipleFields(t *testing.T) {
	s := NewStore()
	s.SetScenes(threeScenes())

	s.UpdateScene(1, ScenePatch{Duration: Float(5), Prompt: Str("new prompt")})

	history := s.History()
	if got := history[len(history)-1].Field; got != "multiple" {
		t.Errorf("field = %q, want multiple", got)
	}
}

func TestUpdateUnknownSceneIsNoOp(t *testing.T) {
	s := NewStore()
	s.SetScenes(threeScenes())

	if s.UpdateScene(99, ScenePatch{Duration: Float(5)}) {
		t.Error("expected false for unknown scene id")
	}
	if got := len(s.History()); got != 1 {
		t.Errorf("history grew to %d on a no-op", got)
	}
}

func TestUndoRedoRoundTrip(t *testing.T) {
	s := NewStore()
	s.SetScenes(threeScenes())
	s.UpdateScene(1, ScenePatch{Duration: Float(8)})

	if !s.Undo() {
		t.Fatal("Undo returned false")
	}
	if got := s.Scenes()[0].Duration; got != 3 {
		t.Errorf("after undo duration = %g, want 3", got)
	}

	if !s.Redo() {
		t.Fatal("Redo returned false")
	}
	if got := s.Scenes()[0].Duration; got != 8 {
		t.Errorf("after redo duration = %g, want 8", got)
	}

	if s.Redo() {
		t.Error("Redo past the tail should return false")
	}
}

func TestUndoAtFloor(t *testing.T) {
	s := NewStore()
	s.SetScenes(threeScenes())

	if s.Undo() {
		t.Error("Undo at the floor should return false")
	}
}

func TestCommitTruncatesRedoBranch(t *testing.T) {
	s := NewStore()
	s.SetScenes(threeScenes())
	s.UpdateScene(1, ScenePatch{Duration: Float(5)})
	s.UpdateScene(1, ScenePatch{Duration: Float(6)})
	s.UpdateScene(1, ScenePatch{Duration: Float(7)})

	s.Undo()
	s.Undo()
	// New edit from the middle of history abandons the redo branch
	s.UpdateScene(2, ScenePatch{Duration: Float(9)})

	if s.CanRedo() {
		t.Error("redo branch should be gone after a new commit")
	}
	if got := len(s.History()); got != 3 {
		t.Errorf("history length = %d, want 3", got)
	}
	if got := s.Scenes()[0].Duration; got != 5 {
		t.Errorf("scene 1 duration = %g, want 5", got)
	}
	if got := s.Scenes()[1].Duration; got != 9 {
		t.Errorf("scene 2 duration = %g, want 9", got)
	}
}

func TestHistoryCapEviction(t *testing.T) {
	s := NewStore(WithHistoryCap(20))
	s.SetScenes(threeScenes())

	for i := 0; i < 21; i++ {
		s.UpdateScene(1, ScenePatch{Duration: Float(float64(i + 4))})
	}

	if got := len(s.History()); got != 20 {
		t.Fatalf("history length = %d, want 20", got)
	}
	if got := s.HistoryIndex(); got != 19 {
		t.Errorf("history index = %d, want 19", got)
	}
	// Current state is the latest edit
	if got := s.Scenes()[0].Duration; got != 24 {
		t.Errorf("scene 1 duration = %g, want 24", got)
	}
	// The load floor was evicted; undo bottoms out on an early update
	for s.Undo() {
	}
	if got := s.History()[0].Action; got != "update" {
		t.Errorf("oldest surviving entry action = %q, want update", got)
	}
}

func TestAddSceneAssignsNextID(t *testing.T) {
	s := NewStore()
	s.SetScenes(threeScenes())

	s.AddScene(models.Scene{Type: models.SceneTypeCTA, Duration: 2, TextContent: "follow"})

	scenes := s.Scenes()
	if len(scenes) != 4 {
		t.Fatalf("scene count = %d, want 4", len(scenes))
	}
	if scenes[3].ID != 4 {
		t.Errorf("new scene id = %d, want 4", scenes[3].ID)
	}
	if scenes[3].Timestamp != "0:10" {
		t.Errorf("new scene timestamp = %q, want 0:10", scenes[3].Timestamp)
	}
}

func TestRemoveSceneRenumbers(t *testing.T) {
	s := NewStore()
	s.SetScenes(threeScenes())
	s.Select(3)

	if !s.RemoveScene(2) {
		t.Fatal("RemoveScene returned false")
	}

	scenes := s.Scenes()
	if len(scenes) != 2 {
		t.Fatalf("scene count = %d, want 2", len(scenes))
	}
	for i := range scenes {
		if scenes[i].ID != i+1 {
			t.Errorf("position %d has id %d, want %d", i, scenes[i].ID, i+1)
		}
	}
	// The former scene 3 is now id 2; timestamps shifted up
	if scenes[1].Timestamp != "0:03" {
		t.Errorf("scene 2 timestamp = %q, want 0:03", scenes[1].Timestamp)
	}
}

func TestRemoveSelectedSceneClearsSelection(t *testing.T) {
	s := NewStore()
	s.SetScenes(threeScenes())
	s.Select(2)

	s.RemoveScene(2)

	if got := s.SelectedID(); got != 0 {
		t.Errorf("selection = %d, want 0 after removing selected scene", got)
	}
}

func TestDuplicateSceneAppends(t *testing.T) {
	s := NewStore()
	s.SetScenes(threeScenes())

	if !s.DuplicateScene(1) {
		t.Fatal("DuplicateScene returned false")
	}

	scenes := s.Scenes()
	if len(scenes) != 4 {
		t.Fatalf("scene count = %d, want 4", len(scenes))
	}
	last := scenes[3]
	if last.ID != 4 {
		t.Errorf("duplicate id = %d, want 4", last.ID)
	}
	if last.Prompt != "opening shot" {
		t.Errorf("duplicate did not copy fields: prompt = %q", last.Prompt)
	}
}

func TestMoveScene(t *testing.T) {
	s := NewStore()
	s.SetScenes(threeScenes())

	if !s.MoveScene(3, -2) {
		t.Fatal("MoveScene returned false")
	}

	scenes := s.Scenes()
	// The peak scene moved to the front and ids were renumbered
	if scenes[0].Type != models.SceneTypePeak {
		t.Errorf("front scene type = %q, want peak", scenes[0].Type)
	}
	if scenes[0].ID != 1 {
		t.Errorf("front scene id = %d, want 1", scenes[0].ID)
	}
}

func TestMoveScenePastEndIsNoOp(t *testing.T) {
	s := NewStore()
	s.SetScenes(threeScenes())

	if s.MoveScene(1, -1) {
		t.Error("moving the first scene up should be a no-op")
	}
	if s.MoveScene(3, 1) {
		t.Error("moving the last scene down should be a no-op")
	}
	if got := len(s.History()); got != 1 {
		t.Errorf("history grew to %d on a no-op", got)
	}
}

func TestSplitScene(t *testing.T) {
	s := NewStore()
	s.SetScenes(threeScenes())

	if !s.SplitScene(2) {
		t.Fatal("SplitScene returned false")
	}

	scenes := s.Scenes()
	if len(scenes) != 4 {
		t.Fatalf("scene count = %d, want 4", len(scenes))
	}
	if scenes[1].Duration != 2 || scenes[2].Duration != 2 {
		t.Errorf("halves = %g and %g, want 2 and 2", scenes[1].Duration, scenes[2].Duration)
	}
	if got := TotalDuration(scenes); got != 10 {
		t.Errorf("total duration = %g, want 10", got)
	}
}

func TestSplitShortSceneRejected(t *testing.T) {
	s := NewStore()
	s.SetScenes([]models.Scene{{ID: 1, Duration: 0.5}})

	if s.SplitScene(1) {
		t.Error("scenes under one second must not split")
	}
}

func TestJumpToHistory(t *testing.T) {
	s := NewStore()
	s.SetScenes(threeScenes())
	s.UpdateScene(1, ScenePatch{Duration: Float(5)})
	s.UpdateScene(1, ScenePatch{Duration: Float(6)})

	if !s.JumpToHistory(0) {
		t.Fatal("JumpToHistory returned false")
	}
	if got := s.Scenes()[0].Duration; got != 3 {
		t.Errorf("duration = %g after jump to floor, want 3", got)
	}
	if s.JumpToHistory(99) {
		t.Error("out-of-range jump should return false")
	}
}

func TestDeleteHistoryAt(t *testing.T) {
	s := NewStore()
	s.SetScenes(threeScenes())
	s.UpdateScene(1, ScenePatch{Duration: Float(5)})
	s.UpdateScene(1, ScenePatch{Duration: Float(6)})

	if s.DeleteHistoryAt(0) {
		t.Error("deleting the floor entry must be rejected")
	}

	// Deleting an entry at or before the cursor reloads the prior snapshot
	if !s.DeleteHistoryAt(2) {
		t.Fatal("DeleteHistoryAt returned false")
	}
	if got := len(s.History()); got != 2 {
		t.Errorf("history length = %d, want 2", got)
	}
	if got := s.Scenes()[0].Duration; got != 5 {
		t.Errorf("duration = %g after deleting current entry, want 5", got)
	}
}

func TestClearHistory(t *testing.T) {
	s := NewStore()
	s.SetScenes(threeScenes())
	s.UpdateScene(1, ScenePatch{Duration: Float(5)})

	s.ClearHistory()

	if got := len(s.History()); got != 1 {
		t.Errorf("history length = %d, want 1", got)
	}
	if s.CanUndo() {
		t.Error("undo should be unavailable after clear")
	}
	// Current state survives the collapse
	if got := s.Scenes()[0].Duration; got != 5 {
		t.Errorf("duration = %g, want 5", got)
	}
}

func TestReplaceScenesIsUndoable(t *testing.T) {
	s := NewStore()
	s.SetScenes(threeScenes())

	fixed := s.Scenes()
	fixed[2].Duration = 7
	s.ReplaceScenes("autofix", fixed)

	if got := s.Scenes()[2].Duration; got != 7 {
		t.Fatalf("duration = %g, want 7", got)
	}
	if !s.Undo() {
		t.Fatal("ReplaceScenes should be undoable")
	}
	if got := s.Scenes()[2].Duration; got != 3 {
		t.Errorf("duration = %g after undo, want 3", got)
	}
}

func TestSubscribeSliceFiltering(t *testing.T) {
	s := NewStore()
	s.SetScenes(threeScenes())

	var sceneEvents, selectionEvents int
	unsub := s.Subscribe(func(changed []Slice) { sceneEvents++ }, SliceScenes)
	s.Subscribe(func(changed []Slice) { selectionEvents++ }, SliceSelection)

	s.UpdateScene(1, ScenePatch{Duration: Float(5)})
	if sceneEvents != 1 {
		t.Errorf("scene subscriber fired %d times, want 1", sceneEvents)
	}
	if selectionEvents != 0 {
		t.Errorf("selection subscriber fired %d times, want 0", selectionEvents)
	}

	s.Select(2)
	if selectionEvents != 1 {
		t.Errorf("selection subscriber fired %d times, want 1", selectionEvents)
	}

	unsub()
	s.UpdateScene(1, ScenePatch{Duration: Float(6)})
	if sceneEvents != 1 {
		t.Errorf("unsubscribed callback fired, count = %d", sceneEvents)
	}
}

func TestSubscriberMayReadStore(t *testing.T) {
	s := NewStore()
	s.SetScenes(threeScenes())

	var seen int
	s.Subscribe(func(changed []Slice) {
		seen = len(s.Scenes()) // must not deadlock
	}, SliceScenes)

	s.RemoveScene(1)
	if seen != 2 {
		t.Errorf("subscriber saw %d scenes, want 2", seen)
	}
}

func TestPersistReceivesSnapshot(t *testing.T) {
	var persisted [][]models.Scene
	s := NewStore(WithPersist(func(scenes []models.Scene) {
		persisted = append(persisted, scenes)
	}))

	s.SetScenes(threeScenes())
	s.UpdateScene(1, ScenePatch{Duration: Float(5)})

	if len(persisted) != 2 {
		t.Fatalf("persist called %d times, want 2", len(persisted))
	}
	if got := persisted[1][0].Duration; got != 5 {
		t.Errorf("persisted duration = %g, want 5", got)
	}

	// Snapshot is a copy; mutating it must not affect the store
	persisted[1][0].Duration = 99
	if got := s.Scenes()[0].Duration; got != 5 {
		t.Errorf("store duration = %g after external mutation, want 5", got)
	}
}

func TestValidatorRunsOnMutation(t *testing.T) {
	s := NewStore(WithValidator(func(scenes []models.Scene, target float64) []models.Diagnostic {
		if len(scenes) > 2 {
			return []models.Diagnostic{{Severity: models.SeverityWarning, Field: "count", Message: "too many scenes"}}
		}
		return nil
	}))

	s.SetScenes(threeScenes())
	if got := len(s.Diagnostics()); got != 1 {
		t.Fatalf("diagnostics = %d, want 1", got)
	}

	s.RemoveScene(3)
	if got := len(s.Diagnostics()); got != 0 {
		t.Errorf("diagnostics = %d after fix, want 0", got)
	}
}

func TestScenesReturnsCopy(t *testing.T) {
	s := NewStore()
	s.SetScenes(threeScenes())

	scenes := s.Scenes()
	scenes[0].Duration = 99

	if got := s.Scenes()[0].Duration; got != 3 {
		t.Errorf("store duration = %g after external mutation, want 3", got)
	}
}

func TestSelectUnknownClearsSelection(t *testing.T) {
	s := NewStore()
	s.SetScenes(threeScenes())

	s.Select(2)
	s.Select(42)

	if got := s.SelectedID(); got != 0 {
		t.Errorf("selection = %d, want 0", got)
	}
}
