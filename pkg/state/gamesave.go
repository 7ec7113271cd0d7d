package state

import (
	"time"

	"github.com/google/uuid"

	"github.com/inkwell-games/novel-engine/pkg/content"
)

// SaveVersion is the current GameSave schema version. Older saves are
// migrated forward by Normalize; saves from a newer schema are rejected by
// the storage layer's bundle import.
const SaveVersion = 1

// Item is one inventory entry. Entries are unique by ID; granting an item
// that already exists adds quantities.
type Item struct {
	ID       string `json:"id"`
	Name     string `json:"name,omitempty"`
	Quantity int    `json:"quantity"`
}

// Memory is a collected narrative snapshot. Memories are unique by ID and
// kept in acquisition order.
type Memory struct {
	ID         string    `json:"id"`
	Title      string    `json:"title,omitempty"`
	Text       string    `json:"text,omitempty"`
	SceneID    string    `json:"scene_id,omitempty"`
	AcquiredAt time.Time `json:"acquired_at"`
}

// GameSave is the durable record of one player's progress. It is mutated
// only through Manager operations and the data-rule methods below.
type GameSave struct {
	ID        uuid.UUID `json:"id"`
	Version   int       `json:"version"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	PlayerName   string `json:"player_name"`
	PlayerAvatar string `json:"player_avatar,omitempty"`

	CurrentPhase   content.Phase `json:"current_phase"`
	CurrentSceneID string        `json:"current_scene_id,omitempty"`

	// Dialog position. Both are set while a dialog is in progress, and the
	// node must belong to the named script; both empty otherwise.
	CurrentDialogID       string `json:"current_dialog_id,omitempty"`
	CurrentDialogScriptID string `json:"current_dialog_script_id,omitempty"`

	ReadDialogIDs []string       `json:"read_dialog_ids,omitempty"`
	Inventory     []Item         `json:"inventory,omitempty"`
	Memories      []Memory       `json:"memories,omitempty"`
	Achievements  []string       `json:"achievements,omitempty"`
	Flags         map[string]any `json:"flags,omitempty"`

	// PlayTime is accumulated seconds of play, updated on each persist.
	PlayTime int64 `json:"play_time"`
}

// NewGameSave constructs a fresh save for a new game.
func NewGameSave(playerName, avatar string) *GameSave {
	now := time.Now()
	return &GameSave{
		ID:            uuid.New(),
		Version:       SaveVersion,
		CreatedAt:     now,
		UpdatedAt:     now,
		PlayerName:    playerName,
		PlayerAvatar:  avatar,
		Flags:         make(map[string]any),
		ReadDialogIDs: []string{},
	}
}

// Normalize repairs a save after deserialization: nil collections become
// empty and pre-versioning saves are stamped with the current version.
func (gs *GameSave) Normalize() {
	if gs.Flags == nil {
		gs.Flags = make(map[string]any)
	}
	if gs.ReadDialogIDs == nil {
		gs.ReadDialogIDs = []string{}
	}
	if gs.Inventory == nil {
		gs.Inventory = []Item{}
	}
	if gs.Memories == nil {
		gs.Memories = []Memory{}
	}
	if gs.Achievements == nil {
		gs.Achievements = []string{}
	}
	if gs.Version == 0 {
		gs.Version = SaveVersion
	}
}

// DialogActive reports whether the save records a mid-dialog position.
func (gs *GameSave) DialogActive() bool {
	return gs.CurrentDialogID != ""
}

// SetFlag upserts a flag. Flags are the condition-evaluation context, so
// this is always treated as a change.
func (gs *GameSave) SetFlag(key string, value any) {
	if gs.Flags == nil {
		gs.Flags = make(map[string]any)
	}
	gs.Flags[key] = value
}

// AddItem grants an item. An existing entry with the same id gains the
// quantity; otherwise the item is appended. Returns the resulting entry.
func (gs *GameSave) AddItem(item Item) Item {
	if item.Quantity == 0 {
		item.Quantity = 1
	}
	for i := range gs.Inventory {
		if gs.Inventory[i].ID == item.ID {
			gs.Inventory[i].Quantity += item.Quantity
			if item.Name != "" {
				gs.Inventory[i].Name = item.Name
			}
			return gs.Inventory[i]
		}
	}
	gs.Inventory = append(gs.Inventory, item)
	return item
}

// RemoveItem decrements an item's quantity, dropping the entry when it
// reaches zero. Removing an absent item is a no-op; the boolean reports
// whether anything changed. Quantities never go negative.
func (gs *GameSave) RemoveItem(itemID string, quantity int) bool {
	if quantity <= 0 {
		quantity = 1
	}
	for i := range gs.Inventory {
		if gs.Inventory[i].ID != itemID {
			continue
		}
		gs.Inventory[i].Quantity -= quantity
		if gs.Inventory[i].Quantity <= 0 {
			gs.Inventory = append(gs.Inventory[:i], gs.Inventory[i+1:]...)
		}
		return true
	}
	return false
}

// ItemQuantity returns the held quantity for an item id, zero if absent.
func (gs *GameSave) ItemQuantity(itemID string) int {
	for i := range gs.Inventory {
		if gs.Inventory[i].ID == itemID {
			return gs.Inventory[i].Quantity
		}
	}
	return 0
}

// AddMemory appends a memory unless one with the same id is already
// collected. Returns the stored memory, with AcquiredAt stamped, and
// whether the collection changed.
func (gs *GameSave) AddMemory(m Memory) (Memory, bool) {
	for i := range gs.Memories {
		if gs.Memories[i].ID == m.ID {
			return gs.Memories[i], false
		}
	}
	if m.AcquiredAt.IsZero() {
		m.AcquiredAt = time.Now()
	}
	gs.Memories = append(gs.Memories, m)
	return m, true
}

// UnlockAchievement adds an achievement id to the unlocked set. Duplicate
// unlocks are silently ignored.
func (gs *GameSave) UnlockAchievement(id string) bool {
	for _, a := range gs.Achievements {
		if a == id {
			return false
		}
	}
	gs.Achievements = append(gs.Achievements, id)
	return true
}

// HasAchievement reports whether the achievement is unlocked.
func (gs *GameSave) HasAchievement(id string) bool {
	for _, a := range gs.Achievements {
		if a == id {
			return true
		}
	}
	return false
}

// MarkDialogRead records a node id as shown. Idempotent.
func (gs *GameSave) MarkDialogRead(nodeID string) bool {
	if nodeID == "" {
		return false
	}
	for _, id := range gs.ReadDialogIDs {
		if id == nodeID {
			return false
		}
	}
	gs.ReadDialogIDs = append(gs.ReadDialogIDs, nodeID)
	return true
}

// HasReadDialog reports whether a node id has been shown before.
func (gs *GameSave) HasReadDialog(nodeID string) bool {
	for _, id := range gs.ReadDialogIDs {
		if id == nodeID {
			return true
		}
	}
	return false
}
