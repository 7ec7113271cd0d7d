package content

import (
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

// EffectType discriminates the effect union.
type EffectType string

const (
	EffectSetFlag           EffectType = "set_flag"
	EffectAddItem           EffectType = "add_item"
	EffectRemoveItem        EffectType = "remove_item"
	EffectAddMemory         EffectType = "add_memory"
	EffectUnlockAchievement EffectType = "unlock_achievement"
	EffectChangeScene       EffectType = "change_scene"
	EffectChangePhase       EffectType = "change_phase"

	// Reserved presentation effects. The engine surfaces them as
	// notifications and leaves the save untouched.
	EffectPlaySound   EffectType = "play_sound"
	EffectShakeScreen EffectType = "shake_screen"
)

// SetFlagPayload upserts a save flag. Value is a bool, string or number.
type SetFlagPayload struct {
	Key   string `json:"key" yaml:"key"`
	Value any    `json:"value" yaml:"value"`
}

// AddItemPayload grants an inventory item. Quantities merge by item id.
type AddItemPayload struct {
	ID       string `json:"id" yaml:"id"`
	Name     string `json:"name,omitempty" yaml:"name,omitempty"`
	Quantity int    `json:"quantity,omitempty" yaml:"quantity,omitempty"`
}

// RemoveItemPayload removes quantity (default 1) of an item.
type RemoveItemPayload struct {
	ItemID   string `json:"item_id" yaml:"item_id"`
	Quantity int    `json:"quantity,omitempty" yaml:"quantity,omitempty"`
}

// AddMemoryPayload collects a narrative snapshot. Duplicate ids are ignored.
type AddMemoryPayload struct {
	ID      string `json:"id" yaml:"id"`
	Title   string `json:"title,omitempty" yaml:"title,omitempty"`
	Text    string `json:"text,omitempty" yaml:"text,omitempty"`
	SceneID string `json:"scene_id,omitempty" yaml:"scene_id,omitempty"`
}

// UnlockAchievementPayload unlocks an achievement. Duplicate ids are ignored.
type UnlockAchievementPayload struct {
	AchievementID string `json:"achievement_id" yaml:"achievement_id"`
}

// ChangeScenePayload is a control effect: the engine re-enters the scene
// rather than merging data into the save.
type ChangeScenePayload struct {
	SceneID string `json:"scene_id" yaml:"scene_id"`
}

// ChangePhasePayload is a control effect: the engine jumps to the phase's
// first scene and start script.
type ChangePhasePayload struct {
	Phase Phase `json:"phase" yaml:"phase"`
}

// PlaySoundPayload names a sound cue for the presentation layer.
type PlaySoundPayload struct {
	SoundID string `json:"sound_id" yaml:"sound_id"`
}

// ShakeScreenPayload requests a screen shake from the presentation layer.
type ShakeScreenPayload struct {
	DurationMS int `json:"duration_ms,omitempty" yaml:"duration_ms,omitempty"`
}

// Effect is a closed tagged union. Exactly one payload pointer is non-nil,
// matching Type. The wire form is {"type": ..., "payload": {...}}.
type Effect struct {
	Type EffectType

	SetFlag           *SetFlagPayload
	AddItem           *AddItemPayload
	RemoveItem        *RemoveItemPayload
	AddMemory         *AddMemoryPayload
	UnlockAchievement *UnlockAchievementPayload
	ChangeScene       *ChangeScenePayload
	ChangePhase       *ChangePhasePayload
	PlaySound         *PlaySoundPayload
	ShakeScreen       *ShakeScreenPayload
}

// IsControl reports whether the effect requires an engine-level transition
// instead of a data merge into the save.
func (e Effect) IsControl() bool {
	return e.Type == EffectChangeScene || e.Type == EffectChangePhase
}

type effectEnvelope struct {
	Type    EffectType      `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// UnmarshalJSON decodes the {type, payload} envelope into the matching
// concrete payload.
func (e *Effect) UnmarshalJSON(data []byte) error {
	var env effectEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return fmt.Errorf("failed to unmarshal effect envelope: %w", err)
	}
	decode := func(dst any) error {
		if len(env.Payload) == 0 {
			return fmt.Errorf("effect %q is missing its payload", env.Type)
		}
		if err := json.Unmarshal(env.Payload, dst); err != nil {
			return fmt.Errorf("failed to unmarshal %q payload: %w", env.Type, err)
		}
		return nil
	}
	return e.assign(env.Type, decode)
}

// MarshalJSON emits the {type, payload} envelope.
func (e Effect) MarshalJSON() ([]byte, error) {
	payload := e.payload()
	if payload == nil {
		return nil, fmt.Errorf("effect %q has no payload", e.Type)
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return json.Marshal(effectEnvelope{Type: e.Type, Payload: raw})
}

// UnmarshalYAML decodes the same envelope from YAML story files.
func (e *Effect) UnmarshalYAML(value *yaml.Node) error {
	var env struct {
		Type    EffectType `yaml:"type"`
		Payload yaml.Node  `yaml:"payload"`
	}
	if err := value.Decode(&env); err != nil {
		return fmt.Errorf("failed to decode effect envelope: %w", err)
	}
	decode := func(dst any) error {
		if env.Payload.IsZero() {
			return fmt.Errorf("effect %q is missing its payload", env.Type)
		}
		if err := env.Payload.Decode(dst); err != nil {
			return fmt.Errorf("failed to decode %q payload: %w", env.Type, err)
		}
		return nil
	}
	return e.assign(env.Type, decode)
}

func (e *Effect) assign(t EffectType, decode func(any) error) error {
	*e = Effect{Type: t}
	switch t {
	case EffectSetFlag:
		e.SetFlag = &SetFlagPayload{}
		return decode(e.SetFlag)
	case EffectAddItem:
		e.AddItem = &AddItemPayload{}
		return decode(e.AddItem)
	case EffectRemoveItem:
		e.RemoveItem = &RemoveItemPayload{}
		return decode(e.RemoveItem)
	case EffectAddMemory:
		e.AddMemory = &AddMemoryPayload{}
		return decode(e.AddMemory)
	case EffectUnlockAchievement:
		e.UnlockAchievement = &UnlockAchievementPayload{}
		return decode(e.UnlockAchievement)
	case EffectChangeScene:
		e.ChangeScene = &ChangeScenePayload{}
		return decode(e.ChangeScene)
	case EffectChangePhase:
		e.ChangePhase = &ChangePhasePayload{}
		return decode(e.ChangePhase)
	case EffectPlaySound:
		e.PlaySound = &PlaySoundPayload{}
		return decode(e.PlaySound)
	case EffectShakeScreen:
		e.ShakeScreen = &ShakeScreenPayload{}
		return decode(e.ShakeScreen)
	default:
		return fmt.Errorf("unknown effect type %q", t)
	}
}

func (e Effect) payload() any {
	switch e.Type {
	case EffectSetFlag:
		return e.SetFlag
	case EffectAddItem:
		return e.AddItem
	case EffectRemoveItem:
		return e.RemoveItem
	case EffectAddMemory:
		return e.AddMemory
	case EffectUnlockAchievement:
		return e.UnlockAchievement
	case EffectChangeScene:
		return e.ChangeScene
	case EffectChangePhase:
		return e.ChangePhase
	case EffectPlaySound:
		return e.PlaySound
	case EffectShakeScreen:
		return e.ShakeScreen
	}
	return nil
}

// Validate checks the payload at content-load time, so the apply path never
// sees a malformed effect.
func (e Effect) Validate() error {
	switch e.Type {
	case EffectSetFlag:
		if e.SetFlag == nil || e.SetFlag.Key == "" {
			return fmt.Errorf("set_flag requires a key")
		}
	case EffectAddItem:
		if e.AddItem == nil || e.AddItem.ID == "" {
			return fmt.Errorf("add_item requires an item id")
		}
		if e.AddItem.Quantity < 0 {
			return fmt.Errorf("add_item quantity must be >= 0")
		}
	case EffectRemoveItem:
		if e.RemoveItem == nil || e.RemoveItem.ItemID == "" {
			return fmt.Errorf("remove_item requires an item id")
		}
		if e.RemoveItem.Quantity < 0 {
			return fmt.Errorf("remove_item quantity must be >= 0")
		}
	case EffectAddMemory:
		if e.AddMemory == nil || e.AddMemory.ID == "" {
			return fmt.Errorf("add_memory requires a memory id")
		}
	case EffectUnlockAchievement:
		if e.UnlockAchievement == nil || e.UnlockAchievement.AchievementID == "" {
			return fmt.Errorf("unlock_achievement requires an achievement id")
		}
	case EffectChangeScene:
		if e.ChangeScene == nil || e.ChangeScene.SceneID == "" {
			return fmt.Errorf("change_scene requires a scene id")
		}
	case EffectChangePhase:
		if e.ChangePhase == nil || e.ChangePhase.Phase == "" {
			return fmt.Errorf("change_phase requires a phase")
		}
	case EffectPlaySound:
		if e.PlaySound == nil || e.PlaySound.SoundID == "" {
			return fmt.Errorf("play_sound requires a sound id")
		}
	case EffectShakeScreen:
		if e.ShakeScreen == nil {
			return fmt.Errorf("shake_screen requires a payload")
		}
	default:
		return fmt.Errorf("unknown effect type %q", e.Type)
	}
	return nil
}
