package content

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testStory builds a minimal valid two-phase story. Tests mutate the result
// to produce specific defects.
func testStory() *Story {
	return &Story{
		Title:  "Test Story",
		Phases: []Phase{"intro", "finale"},
		Scenes: []Scene{
			{
				ID:            "cabin",
				Phase:         "intro",
				Background:    "cabin_day",
				EntryDialogID: "n1",
				Hotspots: []Hotspot{
					{ID: "door", Label: "Open the door", SceneID: "woods"},
					{ID: "mirror", Label: "Look in the mirror", ScriptID: "mirror_talk"},
				},
			},
			{ID: "woods", Phase: "intro"},
			{ID: "clearing", Phase: "finale"},
		},
		Scripts: []DialogScript{
			{
				ID:          "cabin_intro",
				Phase:       "intro",
				StartNodeID: "n1",
				Nodes: []DialogNode{
					{ID: "n1", Speaker: SpeakerNarrator, Text: "You wake up.", Next: "n2"},
					{
						ID: "n2", Speaker: "stranger", Text: "Finally awake?",
						Choices: []Choice{
							{ID: "c1", Text: "Who are you?", NextID: "n3"},
							{ID: "c2", Text: "Leave.", NextID: "n3", Condition: "brave",
								Effects: []Effect{{Type: EffectChangeScene, ChangeScene: &ChangeScenePayload{SceneID: "woods"}}}},
						},
					},
					{ID: "n3", Speaker: "stranger", Text: "All in good time.",
						Effects: []Effect{{Type: EffectChangePhase, ChangePhase: &ChangePhasePayload{Phase: "finale"}}}},
				},
			},
			{
				ID:          "mirror_talk",
				Phase:       "intro",
				StartNodeID: "m1",
				Nodes: []DialogNode{
					{ID: "m1", Speaker: SpeakerNarrator, Text: "Your reflection stares back."},
				},
			},
			{
				ID:          "finale_opening",
				Phase:       "finale",
				StartNodeID: "f1",
				Nodes: []DialogNode{
					{ID: "f1", Speaker: SpeakerNarrator, Text: "It ends here."},
				},
			},
		},
	}
}

func TestStoryValidate_Valid(t *testing.T) {
	assert.NoError(t, testStory().Validate())
}

func TestStoryValidate_Errors(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Story)
		wantErr string
	}{
		{
			"missing title",
			func(s *Story) { s.Title = "" },
			"story has no title",
		},
		{
			"no phases",
			func(s *Story) { s.Phases = nil },
			"story declares no phases",
		},
		{
			"duplicate phase",
			func(s *Story) { s.Phases = append(s.Phases, "intro") },
			`duplicate phase "intro"`,
		},
		{
			"duplicate scene id",
			func(s *Story) { s.Scenes = append(s.Scenes, Scene{ID: "cabin", Phase: "intro"}) },
			`duplicate scene id "cabin"`,
		},
		{
			"scene with unknown phase",
			func(s *Story) { s.Scenes[1].Phase = "epilogue" },
			`unknown phase "epilogue"`,
		},
		{
			"missing start node",
			func(s *Story) { s.Scripts[0].StartNodeID = "n99" },
			`start node "n99" not found`,
		},
		{
			"dangling next",
			func(s *Story) { s.Scripts[0].Nodes[0].Next = "n99" },
			`next "n99" not found`,
		},
		{
			"dangling choice target",
			func(s *Story) { s.Scripts[0].Nodes[1].Choices[0].NextID = "n99" },
			`targets unknown node "n99"`,
		},
		{
			"dangling entry dialog",
			func(s *Story) { s.Scenes[0].EntryDialogID = "n99" },
			`entry dialog "n99" not found`,
		},
		{
			"hotspot to unknown scene",
			func(s *Story) { s.Scenes[0].Hotspots[0].SceneID = "nowhere" },
			`targets unknown scene "nowhere"`,
		},
		{
			"hotspot to unknown script",
			func(s *Story) { s.Scenes[0].Hotspots[1].ScriptID = "nothing" },
			`targets unknown script "nothing"`,
		},
		{
			"change_scene to unknown scene",
			func(s *Story) {
				s.Scripts[0].Nodes[1].Choices[1].Effects[0].ChangeScene.SceneID = "void"
			},
			`change_scene targets unknown scene "void"`,
		},
		{
			"change_phase to unknown phase",
			func(s *Story) {
				s.Scripts[0].Nodes[2].Effects[0].ChangePhase.Phase = "void"
			},
			`change_phase targets unknown phase "void"`,
		},
		{
			"effect missing payload",
			func(s *Story) {
				s.Scripts[0].Nodes[2].Effects = []Effect{{Type: EffectSetFlag}}
			},
			"set_flag",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := testStory()
			tt.mutate(s)
			err := s.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestStoryValidate_CollectsAllErrors(t *testing.T) {
	s := testStory()
	s.Title = ""
	s.Scenes[0].EntryDialogID = "n99"
	s.Scripts[0].Nodes[0].Next = "n98"

	err := s.Validate()
	require.Error(t, err)
	for _, want := range []string{"story has no title", `entry dialog "n99"`, `next "n98"`} {
		assert.Contains(t, err.Error(), want)
	}
	assert.GreaterOrEqual(t, strings.Count(err.Error(), "\n"), 2, "all defects should be reported at once")
}

func TestDialogScriptHelpers(t *testing.T) {
	s := testStory()
	script := &s.Scripts[0]

	assert.NotNil(t, script.Node("n2"))
	assert.Nil(t, script.Node("nope"))
	require.NotNil(t, script.StartNode())
	assert.Equal(t, "n1", script.StartNode().ID)

	n2 := script.Node("n2")
	assert.True(t, n2.HasChoices())
	assert.NotNil(t, n2.Choice("c1"))
	assert.Nil(t, n2.Choice("missing"))
	assert.False(t, script.Node("n1").HasChoices())

	var nilScript *DialogScript
	assert.Nil(t, nilScript.Node("n1"))
	assert.Nil(t, nilScript.StartNode())
}
