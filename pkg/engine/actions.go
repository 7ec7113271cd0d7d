package engine

import (
	"github.com/google/uuid"

	"github.com/inkwell-games/novel-engine/pkg/content"
	"github.com/inkwell-games/novel-engine/pkg/state"
)

// Action is the closed set of state-changing intents accepted by
// Engine.Dispatch. Each intent is its own struct with a fixed payload.
type Action interface {
	isAction()
}

// StartNewGame creates a fresh save at the first phase's first scene.
type StartNewGame struct {
	PlayerName   string
	PlayerAvatar string
}

// LoadSave loads a persisted save by id and resumes from it.
type LoadSave struct {
	SaveID uuid.UUID
}

// ChangePhase jumps to the phase's first scene and start script.
type ChangePhase struct {
	Phase content.Phase
}

// ChangeScene moves to a scene, entering its entry dialog if it has one.
type ChangeScene struct {
	SceneID string
}

// StartDialog enters a dialog script at its start node.
type StartDialog struct {
	ScriptID string
}

// AdvanceDialog is the turn-taking intent: complete the typewriter, reveal
// choices, move to the next node, or end the dialog, in that priority.
type AdvanceDialog struct{}

// MakeChoice selects a choice on the current node.
type MakeChoice struct {
	ChoiceID string
}

// CompleteTypewriter marks the current node's text reveal finished.
type CompleteTypewriter struct{}

// AddItem grants an inventory item.
type AddItem struct {
	Item state.Item
}

// RemoveItem removes quantity (default 1) of an item.
type RemoveItem struct {
	ItemID   string
	Quantity int
}

// AddMemory collects a memory.
type AddMemory struct {
	Memory state.Memory
}

// SetFlag upserts a save flag.
type SetFlag struct {
	Key   string
	Value any
}

// UnlockAchievement unlocks an achievement.
type UnlockAchievement struct {
	AchievementID string
}

// SaveGame persists the current save immediately.
type SaveGame struct{}

// ToggleMenu flips menu visibility.
type ToggleMenu struct{}

// ToggleInventory flips inventory visibility.
type ToggleInventory struct{}

// ToggleMemories flips memories visibility.
type ToggleMemories struct{}

func (StartNewGame) isAction()       {}
func (LoadSave) isAction()           {}
func (ChangePhase) isAction()        {}
func (ChangeScene) isAction()        {}
func (StartDialog) isAction()        {}
func (AdvanceDialog) isAction()      {}
func (MakeChoice) isAction()         {}
func (CompleteTypewriter) isAction() {}
func (AddItem) isAction()            {}
func (RemoveItem) isAction()         {}
func (AddMemory) isAction()          {}
func (SetFlag) isAction()            {}
func (UnlockAchievement) isAction()  {}
func (SaveGame) isAction()           {}
func (ToggleMenu) isAction()         {}
func (ToggleInventory) isAction()    {}
func (ToggleMemories) isAction()     {}
