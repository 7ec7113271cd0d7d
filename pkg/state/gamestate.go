package state

import "github.com/inkwell-games/novel-engine/pkg/content"

// GameState is the transient runtime view over the active save: UI
// visibility flags plus content references resolved from the save's ids.
// It is never persisted; everything except the UI booleans and
// TypewriterComplete is derivable from GameSave plus the content index.
type GameState struct {
	Save *GameSave

	ShowDialog    bool
	ShowChoices   bool
	ShowMenu      bool
	ShowInventory bool
	ShowMemories  bool
	IsLoaded      bool
	IsLoading     bool

	CurrentScene        *content.Scene
	CurrentDialogScript *content.DialogScript
	CurrentDialogNode   *content.DialogNode

	// Sticky presentation values, inherited across nodes that set no
	// override of their own.
	CurrentBackground      string
	CurrentCharacterSprite string

	// TypewriterComplete tracks whether the current node's text has finished
	// revealing. The reveal itself is a renderer concern, but the engine
	// gates advancement on it.
	TypewriterComplete bool
}
