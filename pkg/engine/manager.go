package engine

import (
	"log/slog"

	"github.com/inkwell-games/novel-engine/pkg/conditions"
	"github.com/inkwell-games/novel-engine/pkg/content"
	"github.com/inkwell-games/novel-engine/pkg/state"
)

// AdvanceOutcome classifies what a single AdvanceDialog call did.
type AdvanceOutcome int

const (
	// AdvanceNoDialog means no dialog was in progress; nothing happened.
	AdvanceNoDialog AdvanceOutcome = iota
	// AdvanceTypewriter means the call completed the text reveal and stayed
	// on the same node.
	AdvanceTypewriter
	// AdvanceAwaitChoice means the node has choices; the dialog now waits
	// for MakeChoice.
	AdvanceAwaitChoice
	// AdvanceMoved means the dialog moved to the node's successor.
	AdvanceMoved
	// AdvanceEnded means the dialog had nowhere to go and was ended.
	AdvanceEnded
)

// AdvanceResult reports the outcome of one AdvanceDialog call.
type AdvanceResult struct {
	Outcome    AdvanceOutcome
	FromNodeID string
	Node       *content.DialogNode // current node after the call; nil when ended
}

// Manager owns the canonical GameState and is the only component that
// mutates the active GameSave. Every content resolution miss degrades to a
// nil result or no-op; the manager never fails on a dangling reference.
type Manager struct {
	index *content.Index
	st    state.GameState
	log   *slog.Logger
}

// NewManager creates a manager over a content index.
func NewManager(index *content.Index, log *slog.Logger) *Manager {
	return &Manager{index: index, log: log}
}

// State returns the live game state. Callers must not mutate it directly.
func (m *Manager) State() *state.GameState {
	return &m.st
}

// Save returns the active save, or nil before a game is started or loaded.
func (m *Manager) Save() *state.GameSave {
	return m.st.Save
}

// SetLoading marks the state while a save is being fetched from storage.
// LoadSave and StartNewGame reset it along with the rest of the state.
func (m *Manager) SetLoading(loading bool) {
	m.st.IsLoading = loading
}

// StartNewGame constructs a fresh save at the first phase's first scene and
// enters its entry dialog (or the phase's start script) when one exists.
// Returns the save and the entered dialog node, if any.
func (m *Manager) StartNewGame(playerName, avatar string) (*state.GameSave, *content.DialogNode) {
	save := state.NewGameSave(playerName, avatar)
	m.st = state.GameState{Save: save, IsLoaded: true}

	phase := m.index.FirstPhase()
	save.CurrentPhase = phase
	m.enterScene(m.index.PhaseStartScene(phase))

	node := m.enterSceneDialog(phase)
	m.st.TypewriterComplete = false
	return save, node
}

// LoadSave rehydrates runtime state purely from the save's persisted ids.
// A dialog pointer that no longer resolves in the content index falls back
// to no-dialog instead of failing; previously seen text does not re-animate,
// so the typewriter starts complete.
func (m *Manager) LoadSave(save *state.GameSave) {
	save.Normalize()
	m.st = state.GameState{Save: save, IsLoaded: true}

	// enterScene clears dialog pointers, so capture the persisted position
	// first and restore it below.
	dialogID := save.CurrentDialogID
	scriptID := save.CurrentDialogScriptID
	sceneID := save.CurrentSceneID
	m.enterScene(m.index.SceneByID(sceneID))
	save.CurrentSceneID = sceneID

	if dialogID != "" {
		node := m.index.NodeByID(dialogID)
		script := m.index.ScriptByID(scriptID)
		if node != nil && script != nil && script.Node(node.ID) != nil {
			m.enterDialog(script, node)
		} else {
			if m.log != nil {
				m.log.Warn("Stale dialog reference in save, resuming outside dialog",
					"save_id", save.ID,
					"dialog_id", dialogID,
					"script_id", scriptID)
			}
			m.clearDialog()
		}
	}
	m.st.TypewriterComplete = true
}

// ChangePhase jumps to the phase's first scene and dialog, discarding the
// current scene and dialog position.
func (m *Manager) ChangePhase(phase content.Phase) *content.DialogNode {
	save := m.st.Save
	if save == nil {
		return nil
	}
	save.CurrentPhase = phase
	m.enterScene(m.index.PhaseStartScene(phase))
	node := m.enterSceneDialog(phase)
	m.st.TypewriterComplete = false
	return node
}

// ChangeScene moves to the scene and enters its entry dialog when it has
// one. An unknown scene id is a no-op.
func (m *Manager) ChangeScene(sceneID string) *content.DialogNode {
	save := m.st.Save
	if save == nil {
		return nil
	}
	scene := m.index.SceneByID(sceneID)
	if scene == nil {
		if m.log != nil {
			m.log.Warn("Cannot change to unknown scene", "scene_id", sceneID)
		}
		return nil
	}
	m.enterScene(scene)

	var node *content.DialogNode
	if scene.EntryDialogID != "" {
		node = m.resolveEntryDialog(scene.EntryDialogID)
	}
	m.st.TypewriterComplete = false
	return node
}

// StartDialog enters the script at its start node. Unknown scripts and
// missing start nodes are no-ops.
func (m *Manager) StartDialog(scriptID string) *content.DialogNode {
	if m.st.Save == nil {
		return nil
	}
	script := m.index.ScriptByID(scriptID)
	node := script.StartNode()
	if node == nil {
		return nil
	}
	m.enterDialog(script, node)
	m.st.TypewriterComplete = false
	return node
}

// AdvanceDialog applies the turn-taking rule in strict priority order:
// an incomplete typewriter completes first; a node with choices waits for
// MakeChoice; a resolvable next id moves forward; otherwise the dialog ends.
func (m *Manager) AdvanceDialog() AdvanceResult {
	node := m.st.CurrentDialogNode
	if node == nil {
		return AdvanceResult{Outcome: AdvanceNoDialog}
	}

	if !m.st.TypewriterComplete {
		m.st.TypewriterComplete = true
		return AdvanceResult{Outcome: AdvanceTypewriter, Node: node}
	}

	if node.HasChoices() {
		m.st.ShowChoices = true
		return AdvanceResult{Outcome: AdvanceAwaitChoice, Node: node}
	}

	if node.Next != "" {
		if next := m.st.CurrentDialogScript.Node(node.Next); next != nil {
			m.moveTo(node, next)
			return AdvanceResult{Outcome: AdvanceMoved, FromNodeID: node.ID, Node: next}
		}
	}

	m.clearDialog()
	return AdvanceResult{Outcome: AdvanceEnded, FromNodeID: node.ID}
}

// MakeChoice advances through the named choice on the current node. An
// unknown choice id or an unresolvable target is a silent no-op; condition
// filtering is the caller's job (AvailableChoices).
func (m *Manager) MakeChoice(choiceID string) (*content.Choice, *content.DialogNode) {
	node := m.st.CurrentDialogNode
	if node == nil {
		return nil, nil
	}
	choice := node.Choice(choiceID)
	if choice == nil {
		return nil, nil
	}
	target := m.st.CurrentDialogScript.Node(choice.NextID)
	if target == nil {
		if m.log != nil {
			m.log.Warn("Choice targets missing node", "choice_id", choiceID, "next_id", choice.NextID)
		}
		return nil, nil
	}
	m.moveTo(node, target)
	return choice, target
}

// EndDialog unconditionally exits to the no-dialog state.
func (m *Manager) EndDialog() {
	m.clearDialog()
}

// CompleteTypewriter marks the current node's text reveal finished.
func (m *Manager) CompleteTypewriter() {
	m.st.TypewriterComplete = true
}

// AvailableChoices returns the current node's choices whose conditions hold
// against the save's flags. This is the single place choice gating and
// condition evaluation meet.
func (m *Manager) AvailableChoices() []content.Choice {
	node := m.st.CurrentDialogNode
	if node == nil || m.st.Save == nil {
		return nil
	}
	var available []content.Choice
	for _, c := range node.Choices {
		if conditions.Evaluate(c.Condition, m.st.Save.Flags) {
			available = append(available, c)
		}
	}
	return available
}

// ApplyEffects runs the effect worker over the live save. Control and
// presentation effects come back as notifications for the engine to resolve.
func (m *Manager) ApplyEffects(effects []content.Effect) []state.Notification {
	if m.st.Save == nil {
		return nil
	}
	return state.NewEffectWorker(m.st.Save, m.log).Apply(effects)
}

// ToggleMenu flips menu visibility.
func (m *Manager) ToggleMenu() { m.st.ShowMenu = !m.st.ShowMenu }

// ToggleInventory flips inventory visibility.
func (m *Manager) ToggleInventory() { m.st.ShowInventory = !m.st.ShowInventory }

// ToggleMemories flips memories visibility.
func (m *Manager) ToggleMemories() { m.st.ShowMemories = !m.st.ShowMemories }

// enterScene binds the scene (which may be nil) onto save and state and
// leaves any previous dialog cleared.
func (m *Manager) enterScene(scene *content.Scene) {
	m.clearDialog()
	m.st.CurrentScene = scene
	if scene != nil {
		m.st.Save.CurrentSceneID = scene.ID
		if scene.Background != "" {
			m.st.CurrentBackground = scene.Background
		}
	}
}

// enterSceneDialog starts whichever dialog the current position calls for:
// the scene's entry dialog when present, else the phase's start script.
func (m *Manager) enterSceneDialog(phase content.Phase) *content.DialogNode {
	if scene := m.st.CurrentScene; scene != nil && scene.EntryDialogID != "" {
		if node := m.resolveEntryDialog(scene.EntryDialogID); node != nil {
			return node
		}
	}
	if script := m.index.PhaseStartScript(phase); script != nil {
		if node := script.StartNode(); node != nil {
			m.enterDialog(script, node)
			return node
		}
	}
	return nil
}

// resolveEntryDialog resolves a scene's entry node and its owning script
// through the node's explicit script back-reference.
func (m *Manager) resolveEntryDialog(nodeID string) *content.DialogNode {
	node := m.index.NodeByID(nodeID)
	if node == nil {
		if m.log != nil {
			m.log.Warn("Scene entry dialog not found", "dialog_id", nodeID)
		}
		return nil
	}
	script := m.index.ScriptByID(node.ScriptID)
	if script == nil {
		return nil
	}
	m.enterDialog(script, node)
	return node
}

func (m *Manager) enterDialog(script *content.DialogScript, node *content.DialogNode) {
	save := m.st.Save
	save.CurrentDialogScriptID = script.ID
	save.CurrentDialogID = node.ID
	m.st.CurrentDialogScript = script
	m.st.CurrentDialogNode = node
	m.st.ShowDialog = true
	// A script whose very first node is a choice node shows its choices
	// immediately.
	m.st.ShowChoices = node.HasChoices()
	m.applyOverrides(node)
}

// moveTo performs the shared transition of AdvanceDialog step 3 and
// MakeChoice: mark the departing node read, advance the pointer, reset the
// typewriter and carry sticky presentation overrides forward.
func (m *Manager) moveTo(from, to *content.DialogNode) {
	save := m.st.Save
	save.MarkDialogRead(from.ID)
	save.CurrentDialogID = to.ID
	m.st.CurrentDialogNode = to
	m.st.ShowChoices = false
	m.st.TypewriterComplete = false
	m.applyOverrides(to)
}

// applyOverrides carries node-level presentation overrides. Unset values
// inherit the previous node's resolved background and sprite.
func (m *Manager) applyOverrides(node *content.DialogNode) {
	if node.Background != "" {
		m.st.CurrentBackground = node.Background
	}
	if node.CharacterSprite != "" {
		m.st.CurrentCharacterSprite = node.CharacterSprite
	}
}

func (m *Manager) clearDialog() {
	if save := m.st.Save; save != nil {
		save.CurrentDialogID = ""
		save.CurrentDialogScriptID = ""
	}
	m.st.CurrentDialogScript = nil
	m.st.CurrentDialogNode = nil
	m.st.ShowDialog = false
	m.st.ShowChoices = false
}
