package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inkwell-games/novel-engine/pkg/content"
	"github.com/inkwell-games/novel-engine/pkg/state"
)

// testIndex builds the content used by the engine tests: two phases, a
// choice node with a conditional branch, presentation overrides and a
// phase-jump effect.
func testIndex(t *testing.T) *content.Index {
	t.Helper()
	story := &content.Story{
		Title:  "Engine Test",
		Phases: []content.Phase{"arrival", "storm"},
		Scenes: []content.Scene{
			{
				ID: "dock", Phase: "arrival", Background: "dock_bg", EntryDialogID: "n1",
				Hotspots: []content.Hotspot{
					{ID: "to_tower", Label: "Climb to the tower", SceneID: "tower"},
				},
			},
			{ID: "tower", Phase: "arrival", Background: "tower_bg"},
			{ID: "lantern", Phase: "storm", Background: "lantern_bg", EntryDialogID: "s1"},
		},
		Scripts: []content.DialogScript{
			{
				ID: "dock_intro", Phase: "arrival", StartNodeID: "n1",
				Nodes: []content.DialogNode{
					{ID: "n1", Speaker: content.SpeakerNarrator, Text: "The dock creaks.", Next: "n2"},
					{
						ID: "n2", Speaker: "keeper", Text: "What do you want?",
						Choices: []content.Choice{
							{ID: "c_greet", Text: "Just to talk.", NextID: "n3"},
							{ID: "c_key", Text: "Open the gate.", NextID: "n3", Condition: "has_key",
								Effects: []content.Effect{
									{Type: content.EffectSetFlag, SetFlag: &content.SetFlagPayload{Key: "gate_open", Value: true}},
								}},
						},
					},
					{
						ID: "n3", Speaker: "keeper", Text: "Hm.",
						Background:      "gate_bg",
						CharacterSprite: "keeper_frown",
					},
				},
			},
			{
				ID: "storm_opening", Phase: "storm", StartNodeID: "s1",
				Nodes: []content.DialogNode{
					{ID: "s1", Speaker: content.SpeakerNarrator, Text: "Rain falls.", Next: "s2"},
					{ID: "s2", Speaker: content.SpeakerNarrator, Text: "Hard."},
				},
			},
		},
	}
	require.NoError(t, story.Validate())
	return content.NewIndex(story)
}

func startedManager(t *testing.T) *Manager {
	t.Helper()
	m := NewManager(testIndex(t), testLogger())
	m.StartNewGame("Mira", "")
	return m
}

func TestManager_StartNewGame(t *testing.T) {
	m := NewManager(testIndex(t), testLogger())

	save, node := m.StartNewGame("Mira", "avatar_01")
	require.NotNil(t, save)
	assert.Equal(t, "Mira", save.PlayerName)
	assert.Equal(t, content.Phase("arrival"), save.CurrentPhase)
	assert.Equal(t, "dock", save.CurrentSceneID)

	require.NotNil(t, node)
	assert.Equal(t, "n1", node.ID)
	assert.Equal(t, "n1", save.CurrentDialogID)
	assert.Equal(t, "dock_intro", save.CurrentDialogScriptID)

	st := m.State()
	assert.True(t, st.IsLoaded)
	assert.True(t, st.ShowDialog)
	assert.False(t, st.TypewriterComplete, "fresh dialog text animates")
	assert.Equal(t, "dock_bg", st.CurrentBackground)
}

func TestManager_AdvancePriority(t *testing.T) {
	m := startedManager(t)

	// 1: an incomplete typewriter completes and nothing else happens.
	res := m.AdvanceDialog()
	assert.Equal(t, AdvanceTypewriter, res.Outcome)
	assert.Equal(t, "n1", m.State().CurrentDialogNode.ID)

	// 2: a resolvable next moves forward.
	res = m.AdvanceDialog()
	assert.Equal(t, AdvanceMoved, res.Outcome)
	assert.Equal(t, "n1", res.FromNodeID)
	assert.Equal(t, "n2", res.Node.ID)
	assert.False(t, m.State().TypewriterComplete, "moving resets the typewriter")

	m.CompleteTypewriter()

	// 3: a node with choices waits for MakeChoice.
	res = m.AdvanceDialog()
	assert.Equal(t, AdvanceAwaitChoice, res.Outcome)
	assert.True(t, m.State().ShowChoices)
	res = m.AdvanceDialog()
	assert.Equal(t, AdvanceAwaitChoice, res.Outcome, "repeated advances keep waiting")

	choice, target := m.MakeChoice("c_greet")
	require.NotNil(t, choice)
	assert.Equal(t, "n3", target.ID)
	assert.False(t, m.State().ShowChoices)

	// 4: no choices, no next: the dialog ends.
	m.CompleteTypewriter()
	res = m.AdvanceDialog()
	assert.Equal(t, AdvanceEnded, res.Outcome)
	assert.Equal(t, "n3", res.FromNodeID)
	assert.Nil(t, m.State().CurrentDialogNode)
	assert.False(t, m.State().ShowDialog)
	assert.Equal(t, "", m.Save().CurrentDialogID)
}

func TestManager_ReadDialogMarkedOnTransitionsOnly(t *testing.T) {
	m := startedManager(t)

	m.CompleteTypewriter()
	m.AdvanceDialog() // n1 -> n2
	m.CompleteTypewriter()
	m.AdvanceDialog() // await choice
	m.MakeChoice("c_greet")
	m.CompleteTypewriter()
	m.AdvanceDialog() // n3 ends

	save := m.Save()
	assert.True(t, save.HasReadDialog("n1"))
	assert.True(t, save.HasReadDialog("n2"))
	assert.False(t, save.HasReadDialog("n3"), "ending a dialog does not mark the final node")
	assert.Len(t, save.ReadDialogIDs, 2)
}

func TestManager_AvailableChoices(t *testing.T) {
	m := startedManager(t)
	m.CompleteTypewriter()
	m.AdvanceDialog() // n1 -> n2

	choices := m.AvailableChoices()
	require.Len(t, choices, 1, "conditional choice hidden without the flag")
	assert.Equal(t, "c_greet", choices[0].ID)

	m.Save().SetFlag("has_key", true)
	choices = m.AvailableChoices()
	require.Len(t, choices, 2)
	assert.Equal(t, "c_key", choices[1].ID)
}

func TestManager_MakeChoiceUnknownIsNoOp(t *testing.T) {
	m := startedManager(t)
	m.CompleteTypewriter()
	m.AdvanceDialog() // n1 -> n2

	choice, node := m.MakeChoice("c_missing")
	assert.Nil(t, choice)
	assert.Nil(t, node)
	assert.Equal(t, "n2", m.State().CurrentDialogNode.ID, "position is unchanged")
}

func TestManager_StickyOverrides(t *testing.T) {
	m := startedManager(t)
	assert.Equal(t, "dock_bg", m.State().CurrentBackground)

	m.CompleteTypewriter()
	m.AdvanceDialog() // n1 -> n2; no overrides on n2
	assert.Equal(t, "dock_bg", m.State().CurrentBackground)
	assert.Equal(t, "", m.State().CurrentCharacterSprite)

	m.CompleteTypewriter()
	m.AdvanceDialog()
	m.MakeChoice("c_greet") // n3 overrides background and sprite
	assert.Equal(t, "gate_bg", m.State().CurrentBackground)
	assert.Equal(t, "keeper_frown", m.State().CurrentCharacterSprite)

	// Overrides stick after the dialog ends.
	m.CompleteTypewriter()
	m.AdvanceDialog()
	assert.Equal(t, "gate_bg", m.State().CurrentBackground)
	assert.Equal(t, "keeper_frown", m.State().CurrentCharacterSprite)
}

func TestManager_ChangeScene(t *testing.T) {
	m := startedManager(t)

	node := m.ChangeScene("tower")
	assert.Nil(t, node, "tower has no entry dialog")
	assert.Equal(t, "tower", m.Save().CurrentSceneID)
	assert.Equal(t, "tower_bg", m.State().CurrentBackground)
	assert.Nil(t, m.State().CurrentDialogNode, "scene changes clear the dialog")

	// Unknown scenes are ignored.
	node = m.ChangeScene("basement")
	assert.Nil(t, node)
	assert.Equal(t, "tower", m.Save().CurrentSceneID)
}

func TestManager_ChangePhase(t *testing.T) {
	m := startedManager(t)

	node := m.ChangePhase("storm")
	require.NotNil(t, node)
	assert.Equal(t, "s1", node.ID)
	assert.Equal(t, content.Phase("storm"), m.Save().CurrentPhase)
	assert.Equal(t, "lantern", m.Save().CurrentSceneID)
	assert.Equal(t, "lantern_bg", m.State().CurrentBackground)
	assert.False(t, m.State().TypewriterComplete)
}

func TestManager_StartDialog(t *testing.T) {
	m := startedManager(t)
	m.EndDialog()

	node := m.StartDialog("storm_opening")
	require.NotNil(t, node)
	assert.Equal(t, "s1", node.ID)
	assert.Equal(t, "storm_opening", m.Save().CurrentDialogScriptID)

	assert.Nil(t, m.StartDialog("no_such_script"))
}

func TestManager_LoadSaveResumesDialog(t *testing.T) {
	idx := testIndex(t)
	m := NewManager(idx, testLogger())

	save := state.NewGameSave("Mira", "")
	save.CurrentPhase = "arrival"
	save.CurrentSceneID = "dock"
	save.CurrentDialogID = "n2"
	save.CurrentDialogScriptID = "dock_intro"

	m.LoadSave(save)

	st := m.State()
	require.NotNil(t, st.CurrentDialogNode)
	assert.Equal(t, "n2", st.CurrentDialogNode.ID)
	assert.Equal(t, "dock", save.CurrentSceneID)
	assert.True(t, st.TypewriterComplete, "seen text does not re-animate on load")
	assert.True(t, st.ShowChoices, "a resumed choice node shows its choices")
}

func TestManager_LoadSaveStaleDialogFallsBack(t *testing.T) {
	idx := testIndex(t)
	m := NewManager(idx, testLogger())

	save := state.NewGameSave("Mira", "")
	save.CurrentPhase = "arrival"
	save.CurrentSceneID = "dock"
	save.CurrentDialogID = "removed_node"
	save.CurrentDialogScriptID = "dock_intro"

	m.LoadSave(save)

	st := m.State()
	assert.Nil(t, st.CurrentDialogNode, "stale dialog pointer resumes outside dialog")
	assert.False(t, st.ShowDialog)
	assert.Equal(t, "", save.CurrentDialogID)
	assert.Equal(t, "dock", save.CurrentSceneID, "scene survives the fallback")
}

func TestManager_LoadSaveStaleSceneSurvives(t *testing.T) {
	idx := testIndex(t)
	m := NewManager(idx, testLogger())

	save := state.NewGameSave("Mira", "")
	save.CurrentPhase = "arrival"
	save.CurrentSceneID = "demolished"

	m.LoadSave(save)

	assert.Nil(t, m.State().CurrentScene)
	assert.Equal(t, "demolished", save.CurrentSceneID, "persisted position is not rewritten")
	assert.True(t, m.State().IsLoaded)
}

func TestManager_ApplyEffects(t *testing.T) {
	m := startedManager(t)

	notes := m.ApplyEffects([]content.Effect{
		{Type: content.EffectAddItem, AddItem: &content.AddItemPayload{ID: "rope", Name: "Rope", Quantity: 1}},
		{Type: content.EffectChangePhase, ChangePhase: &content.ChangePhasePayload{Phase: "storm"}},
	})

	require.Len(t, notes, 2)
	assert.Equal(t, state.NoteItemAdded, notes[0].Type)
	assert.Equal(t, state.NoteChangePhase, notes[1].Type)
	assert.Equal(t, 1, m.Save().ItemQuantity("rope"))
	assert.Equal(t, content.Phase("arrival"), m.Save().CurrentPhase,
		"control effects do not transition inside the worker")
}

func TestManager_SetLoading(t *testing.T) {
	m := NewManager(testIndex(t), testLogger())

	m.SetLoading(true)
	assert.True(t, m.State().IsLoading)

	// Rehydrating replaces the whole state, loading flag included.
	m.LoadSave(state.NewGameSave("Mira", ""))
	assert.False(t, m.State().IsLoading)
	assert.True(t, m.State().IsLoaded)
}

func TestManager_Toggles(t *testing.T) {
	m := startedManager(t)

	m.ToggleMenu()
	assert.True(t, m.State().ShowMenu)
	m.ToggleMenu()
	assert.False(t, m.State().ShowMenu)

	m.ToggleInventory()
	assert.True(t, m.State().ShowInventory)
	m.ToggleMemories()
	assert.True(t, m.State().ShowMemories)
}
