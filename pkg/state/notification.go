package state

import "github.com/inkwell-games/novel-engine/pkg/content"

// NotificationType identifies a side effect produced by applying effects.
type NotificationType string

const (
	NoteFlagChanged         NotificationType = "flag_changed"
	NoteItemAdded           NotificationType = "item_added"
	NoteItemRemoved         NotificationType = "item_removed"
	NoteMemoryAdded         NotificationType = "memory_added"
	NoteAchievementUnlocked NotificationType = "achievement_unlocked"

	// Control notifications. The save snapshot is untouched; the engine
	// resolves these by re-entering the named scene or phase.
	NoteChangeScene NotificationType = "change_scene"
	NoteChangePhase NotificationType = "change_phase"

	// Presentation notifications, passed through for renderers.
	NotePlaySound   NotificationType = "play_sound"
	NoteShakeScreen NotificationType = "shake_screen"
)

// Notification is one typed side effect carried up to the event layer.
// Exactly the fields relevant to Type are populated.
type Notification struct {
	Type NotificationType `json:"type"`

	FlagKey   string `json:"flag_key,omitempty"`
	FlagValue any    `json:"flag_value,omitempty"`

	Item     *Item  `json:"item,omitempty"`
	ItemID   string `json:"item_id,omitempty"`
	Quantity int    `json:"quantity,omitempty"`

	Memory        *Memory `json:"memory,omitempty"`
	AchievementID string  `json:"achievement_id,omitempty"`

	SceneID string        `json:"scene_id,omitempty"`
	Phase   content.Phase `json:"phase,omitempty"`

	SoundID    string `json:"sound_id,omitempty"`
	DurationMS int    `json:"duration_ms,omitempty"`
}

// IsControl reports whether the notification requires an engine transition.
func (n Notification) IsControl() bool {
	return n.Type == NoteChangeScene || n.Type == NoteChangePhase
}
