package content

import (
	"fmt"
	"strings"
)

// Story is one authored story document: the ordered phase list plus every
// scene and dialog script. It is the unit the loader reads and the validator
// checks.
type Story struct {
	Title   string         `json:"title" yaml:"title"`
	Phases  []Phase        `json:"phases" yaml:"phases"`
	Scenes  []Scene        `json:"scenes" yaml:"scenes"`
	Scripts []DialogScript `json:"scripts" yaml:"scripts"`
}

// Validate checks every cross-reference in the story and returns all
// problems found, joined into a single error. A valid story can never hand
// the engine a dangling id from its own graph.
func (s *Story) Validate() error {
	var errs []string
	report := func(format string, args ...any) {
		errs = append(errs, fmt.Sprintf(format, args...))
	}

	if s.Title == "" {
		report("story has no title")
	}
	if len(s.Phases) == 0 {
		report("story declares no phases")
	}

	phases := make(map[Phase]bool, len(s.Phases))
	for _, p := range s.Phases {
		if phases[p] {
			report("duplicate phase %q", p)
		}
		phases[p] = true
	}

	sceneIDs := make(map[string]bool, len(s.Scenes))
	nodeIDs := make(map[string]bool)
	scriptIDs := make(map[string]bool, len(s.Scripts))

	for _, sc := range s.Scenes {
		if sc.ID == "" {
			report("scene with empty id")
			continue
		}
		if sceneIDs[sc.ID] {
			report("duplicate scene id %q", sc.ID)
		}
		sceneIDs[sc.ID] = true
		if !phases[sc.Phase] {
			report("scene %q references unknown phase %q", sc.ID, sc.Phase)
		}
	}

	for _, script := range s.Scripts {
		if script.ID == "" {
			report("script with empty id")
			continue
		}
		if scriptIDs[script.ID] {
			report("duplicate script id %q", script.ID)
		}
		scriptIDs[script.ID] = true
		if !phases[script.Phase] {
			report("script %q references unknown phase %q", script.ID, script.Phase)
		}
		if len(script.Nodes) == 0 {
			report("script %q has no nodes", script.ID)
			continue
		}
		if script.StartNode() == nil {
			report("script %q start node %q not found", script.ID, script.StartNodeID)
		}
		for _, n := range script.Nodes {
			if n.ID == "" {
				report("script %q contains a node with empty id", script.ID)
				continue
			}
			if nodeIDs[n.ID] {
				report("duplicate node id %q", n.ID)
			}
			nodeIDs[n.ID] = true
			if n.Next != "" && script.Node(n.Next) == nil {
				report("node %q next %q not found in script %q", n.ID, n.Next, script.ID)
			}
			for _, c := range n.Choices {
				if c.ID == "" {
					report("node %q contains a choice with empty id", n.ID)
				}
				if script.Node(c.NextID) == nil {
					report("choice %q on node %q targets unknown node %q", c.ID, n.ID, c.NextID)
				}
				for _, eff := range c.Effects {
					if err := eff.Validate(); err != nil {
						report("choice %q on node %q: %v", c.ID, n.ID, err)
					}
				}
			}
			for _, eff := range n.Effects {
				if err := eff.Validate(); err != nil {
					report("node %q: %v", n.ID, err)
				}
			}
		}
	}

	// Second pass for references that cross record boundaries.
	for _, sc := range s.Scenes {
		if sc.EntryDialogID != "" && !nodeIDs[sc.EntryDialogID] {
			report("scene %q entry dialog %q not found", sc.ID, sc.EntryDialogID)
		}
		for _, h := range sc.Hotspots {
			if h.SceneID != "" && !sceneIDs[h.SceneID] {
				report("hotspot %q in scene %q targets unknown scene %q", h.ID, sc.ID, h.SceneID)
			}
			if h.ScriptID != "" && !scriptIDs[h.ScriptID] {
				report("hotspot %q in scene %q targets unknown script %q", h.ID, sc.ID, h.ScriptID)
			}
		}
	}
	for _, script := range s.Scripts {
		for _, n := range script.Nodes {
			for _, eff := range collectEffects(n) {
				switch eff.Type {
				case EffectChangeScene:
					if !sceneIDs[eff.ChangeScene.SceneID] {
						report("node %q change_scene targets unknown scene %q", n.ID, eff.ChangeScene.SceneID)
					}
				case EffectChangePhase:
					if !phases[eff.ChangePhase.Phase] {
						report("node %q change_phase targets unknown phase %q", n.ID, eff.ChangePhase.Phase)
					}
				}
			}
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("story %q is invalid:\n  %s", s.Title, strings.Join(errs, "\n  "))
	}
	return nil
}

func collectEffects(n DialogNode) []Effect {
	effects := make([]Effect, 0, len(n.Effects))
	effects = append(effects, n.Effects...)
	for _, c := range n.Choices {
		effects = append(effects, c.Effects...)
	}
	return effects
}
