package state

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inkwell-games/novel-engine/pkg/content"
)

func TestEffectWorker_Apply(t *testing.T) {
	gs := NewGameSave("Test", "")
	w := NewEffectWorker(gs, nil)

	notes := w.Apply([]content.Effect{
		{Type: content.EffectSetFlag, SetFlag: &content.SetFlagPayload{Key: "met_keeper", Value: true}},
		{Type: content.EffectAddItem, AddItem: &content.AddItemPayload{ID: "key", Name: "Brass Key", Quantity: 1}},
		{Type: content.EffectPlaySound, PlaySound: &content.PlaySoundPayload{SoundID: "thunder"}},
		{Type: content.EffectChangeScene, ChangeScene: &content.ChangeScenePayload{SceneID: "lighthouse"}},
	})

	require.Len(t, notes, 4)
	assert.Equal(t, NoteFlagChanged, notes[0].Type)
	assert.Equal(t, NoteItemAdded, notes[1].Type)
	assert.Equal(t, NotePlaySound, notes[2].Type)
	assert.Equal(t, NoteChangeScene, notes[3].Type)

	// Data effects landed on the save.
	assert.Equal(t, true, gs.Flags["met_keeper"])
	assert.Equal(t, 1, gs.ItemQuantity("key"))

	// Control effects did not; the scene is untouched until the engine
	// resolves the notification.
	assert.Equal(t, "", gs.CurrentSceneID)
}

func TestEffectWorker_MemoryNotificationStamped(t *testing.T) {
	gs := NewGameSave("Test", "")
	w := NewEffectWorker(gs, nil)

	notes := w.Apply([]content.Effect{
		{Type: content.EffectAddMemory, AddMemory: &content.AddMemoryPayload{ID: "mem1", Title: "Seen"}},
	})

	require.Len(t, notes, 1)
	require.NotNil(t, notes[0].Memory)
	assert.False(t, notes[0].Memory.AcquiredAt.IsZero(),
		"observers see the acquisition time, not a zero copy")
	assert.Equal(t, gs.Memories[0].AcquiredAt, notes[0].Memory.AcquiredAt)
}

func TestEffectWorker_OrderPreserved(t *testing.T) {
	gs := NewGameSave("Test", "")
	w := NewEffectWorker(gs, nil)

	notes := w.Apply([]content.Effect{
		{Type: content.EffectAddItem, AddItem: &content.AddItemPayload{ID: "coin", Name: "Coin", Quantity: 2}},
		{Type: content.EffectRemoveItem, RemoveItem: &content.RemoveItemPayload{ItemID: "coin", Quantity: 1}},
		{Type: content.EffectAddItem, AddItem: &content.AddItemPayload{ID: "coin", Name: "Coin", Quantity: 1}},
	})

	require.Len(t, notes, 3)
	assert.Equal(t, NoteItemAdded, notes[0].Type)
	assert.Equal(t, NoteItemRemoved, notes[1].Type)
	assert.Equal(t, NoteItemAdded, notes[2].Type)
	assert.Equal(t, 2, gs.ItemQuantity("coin"))
}

func TestEffectWorker_IdempotentNoOps(t *testing.T) {
	gs := NewGameSave("Test", "")
	gs.AddMemory(Memory{ID: "mem1", Title: "Seen"})
	gs.UnlockAchievement("done")
	w := NewEffectWorker(gs, nil)

	notes := w.Apply([]content.Effect{
		{Type: content.EffectAddMemory, AddMemory: &content.AddMemoryPayload{ID: "mem1", Title: "Seen"}},
		{Type: content.EffectUnlockAchievement, UnlockAchievement: &content.UnlockAchievementPayload{AchievementID: "done"}},
		{Type: content.EffectRemoveItem, RemoveItem: &content.RemoveItemPayload{ItemID: "ghost", Quantity: 1}},
	})

	assert.Empty(t, notes, "no-ops must not notify observers")
	assert.Len(t, gs.Memories, 1)
	assert.Len(t, gs.Achievements, 1)
}

func TestEffectWorker_UnknownEffectSkipped(t *testing.T) {
	gs := NewGameSave("Test", "")
	w := NewEffectWorker(gs, nil)

	notes := w.Apply([]content.Effect{{Type: content.EffectType("warp_reality")}})
	assert.Empty(t, notes)
}
