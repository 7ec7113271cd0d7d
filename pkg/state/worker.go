package state

import (
	"log/slog"

	"github.com/inkwell-games/novel-engine/pkg/content"
)

// EffectWorker applies a node's or choice's effect list to a save. Data
// effects mutate the save through its data-rule methods; control and
// presentation effects are returned as notifications untouched, for the
// engine to resolve. Effects are processed strictly in list order, so a
// set_flag ahead of a change_phase is visible to anything the phase change
// triggers downstream.
type EffectWorker struct {
	save *GameSave
	log  *slog.Logger
}

// NewEffectWorker creates a worker bound to a save.
func NewEffectWorker(save *GameSave, log *slog.Logger) *EffectWorker {
	return &EffectWorker{save: save, log: log}
}

// Apply walks the effects in order and returns one notification per applied
// data effect plus pass-through notifications for control and presentation
// effects. Idempotent adds that change nothing produce no notification.
func (w *EffectWorker) Apply(effects []content.Effect) []Notification {
	var notes []Notification
	for _, eff := range effects {
		if note, ok := w.applyOne(eff); ok {
			notes = append(notes, note)
		}
	}
	return notes
}

func (w *EffectWorker) applyOne(eff content.Effect) (Notification, bool) {
	switch eff.Type {
	case content.EffectSetFlag:
		w.save.SetFlag(eff.SetFlag.Key, eff.SetFlag.Value)
		return Notification{
			Type:      NoteFlagChanged,
			FlagKey:   eff.SetFlag.Key,
			FlagValue: eff.SetFlag.Value,
		}, true

	case content.EffectAddItem:
		p := eff.AddItem
		result := w.save.AddItem(Item{ID: p.ID, Name: p.Name, Quantity: p.Quantity})
		return Notification{
			Type:     NoteItemAdded,
			Item:     &result,
			ItemID:   p.ID,
			Quantity: p.Quantity,
		}, true

	case content.EffectRemoveItem:
		p := eff.RemoveItem
		if !w.save.RemoveItem(p.ItemID, p.Quantity) {
			return Notification{}, false
		}
		return Notification{
			Type:     NoteItemRemoved,
			ItemID:   p.ItemID,
			Quantity: p.Quantity,
		}, true

	case content.EffectAddMemory:
		p := eff.AddMemory
		m := Memory{ID: p.ID, Title: p.Title, Text: p.Text, SceneID: p.SceneID}
		stored, ok := w.save.AddMemory(m)
		if !ok {
			return Notification{}, false
		}
		return Notification{Type: NoteMemoryAdded, Memory: &stored}, true

	case content.EffectUnlockAchievement:
		id := eff.UnlockAchievement.AchievementID
		if !w.save.UnlockAchievement(id) {
			return Notification{}, false
		}
		return Notification{Type: NoteAchievementUnlocked, AchievementID: id}, true

	case content.EffectChangeScene:
		return Notification{Type: NoteChangeScene, SceneID: eff.ChangeScene.SceneID}, true

	case content.EffectChangePhase:
		return Notification{Type: NoteChangePhase, Phase: eff.ChangePhase.Phase}, true

	case content.EffectPlaySound:
		return Notification{Type: NotePlaySound, SoundID: eff.PlaySound.SoundID}, true

	case content.EffectShakeScreen:
		return Notification{Type: NoteShakeScreen, DurationMS: eff.ShakeScreen.DurationMS}, true
	}

	if w.log != nil {
		w.log.Warn("Skipping unknown effect", "type", eff.Type)
	}
	return Notification{}, false
}
