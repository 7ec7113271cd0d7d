package engine

import (
	"time"

	"github.com/google/uuid"

	"github.com/inkwell-games/novel-engine/pkg/content"
	"github.com/inkwell-games/novel-engine/pkg/state"
)

// EventType identifies an engine event.
type EventType string

const (
	EventPhaseChanged        EventType = "phase_changed"
	EventSceneChanged        EventType = "scene_changed"
	EventDialogStarted       EventType = "dialog_started"
	EventDialogAdvanced      EventType = "dialog_advanced"
	EventDialogEnded         EventType = "dialog_ended"
	EventChoiceMade          EventType = "choice_made"
	EventItemAdded           EventType = "item_added"
	EventItemRemoved         EventType = "item_removed"
	EventMemoryAdded         EventType = "memory_added"
	EventAchievementUnlocked EventType = "achievement_unlocked"
	EventFlagChanged         EventType = "flag_changed"
	EventPlaySound           EventType = "play_sound"
	EventShakeScreen         EventType = "shake_screen"
	EventSaveCreated         EventType = "save_created"
	EventSaveLoaded          EventType = "save_loaded"
	EventSaveUpdated         EventType = "save_updated"
	EventError               EventType = "error"
)

// Event is one engine notification. At is stamped when the event is
// emitted; only the fields relevant to Type are populated.
type Event struct {
	Type   EventType `json:"type"`
	At     time.Time `json:"at"`
	SaveID uuid.UUID `json:"save_id,omitempty"`

	FromPhase content.Phase `json:"from_phase,omitempty"`
	ToPhase   content.Phase `json:"to_phase,omitempty"`

	FromSceneID string `json:"from_scene_id,omitempty"`
	ToSceneID   string `json:"to_scene_id,omitempty"`

	ScriptID   string `json:"script_id,omitempty"`
	FromNodeID string `json:"from_node_id,omitempty"`
	ToNodeID   string `json:"to_node_id,omitempty"`
	LastNodeID string `json:"last_node_id,omitempty"`
	ChoiceID   string `json:"choice_id,omitempty"`

	Item          *state.Item   `json:"item,omitempty"`
	ItemID        string        `json:"item_id,omitempty"`
	Quantity      int           `json:"quantity,omitempty"`
	Memory        *state.Memory `json:"memory,omitempty"`
	AchievementID string        `json:"achievement_id,omitempty"`
	FlagKey       string        `json:"flag_key,omitempty"`
	FlagValue     any           `json:"flag_value,omitempty"`

	SoundID    string `json:"sound_id,omitempty"`
	DurationMS int    `json:"duration_ms,omitempty"`

	Message string `json:"message,omitempty"`
}
