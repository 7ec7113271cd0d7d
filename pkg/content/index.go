package content

// Index is the read-only lookup layer over a story's scenes, scripts and
// nodes. All lookups are total: a miss returns nil rather than an error,
// because the engine treats dangling content references as degradable.
type Index struct {
	story   *Story
	scenes  map[string]*Scene
	scripts map[string]*DialogScript
	nodes   map[string]*DialogNode

	phaseScene  map[Phase]*Scene
	phaseScript map[Phase]*DialogScript
}

// NewIndex builds an index over the story. Nodes are stamped with their
// owning script id so a node resolved on its own can always be traced back
// to its script. Phase start scene/script is the first declared for that
// phase, in document order.
func NewIndex(story *Story) *Index {
	idx := &Index{
		story:       story,
		scenes:      make(map[string]*Scene, len(story.Scenes)),
		scripts:     make(map[string]*DialogScript, len(story.Scripts)),
		nodes:       make(map[string]*DialogNode),
		phaseScene:  make(map[Phase]*Scene),
		phaseScript: make(map[Phase]*DialogScript),
	}
	for i := range story.Scenes {
		sc := &story.Scenes[i]
		idx.scenes[sc.ID] = sc
		if _, ok := idx.phaseScene[sc.Phase]; !ok {
			idx.phaseScene[sc.Phase] = sc
		}
	}
	for i := range story.Scripts {
		script := &story.Scripts[i]
		idx.scripts[script.ID] = script
		if _, ok := idx.phaseScript[script.Phase]; !ok {
			idx.phaseScript[script.Phase] = script
		}
		for j := range script.Nodes {
			n := &script.Nodes[j]
			n.ScriptID = script.ID
			idx.nodes[n.ID] = n
		}
	}
	return idx
}

// Title returns the story title.
func (idx *Index) Title() string {
	return idx.story.Title
}

// Phases returns the story's phases in declared order.
func (idx *Index) Phases() []Phase {
	return idx.story.Phases
}

// FirstPhase returns the first declared phase, or "".
func (idx *Index) FirstPhase() Phase {
	if len(idx.story.Phases) == 0 {
		return ""
	}
	return idx.story.Phases[0]
}

// SceneByID returns the scene, or nil.
func (idx *Index) SceneByID(id string) *Scene {
	return idx.scenes[id]
}

// PhaseStartScene returns the first scene declared for the phase, or nil.
func (idx *Index) PhaseStartScene(p Phase) *Scene {
	return idx.phaseScene[p]
}

// ScriptByID returns the dialog script, or nil.
func (idx *Index) ScriptByID(id string) *DialogScript {
	return idx.scripts[id]
}

// NodeByID returns the dialog node, or nil. The returned node's ScriptID
// names its owning script.
func (idx *Index) NodeByID(id string) *DialogNode {
	return idx.nodes[id]
}

// PhaseStartScript returns the first script declared for the phase, or nil.
func (idx *Index) PhaseStartScript(p Phase) *DialogScript {
	return idx.phaseScript[p]
}
