package content

// Speaker values for DialogNode. Any other value is treated as a character ID.
const (
	SpeakerNarrator = "narrator"
	SpeakerPlayer   = "player"
)

// DialogScript is a named graph of dialog nodes with one designated start node.
type DialogScript struct {
	ID          string       `json:"id" yaml:"id"`
	Phase       Phase        `json:"phase" yaml:"phase"`
	StartNodeID string       `json:"start_node_id" yaml:"start_node_id"`
	Nodes       []DialogNode `json:"nodes" yaml:"nodes"`
}

// DialogNode is one beat of narration or speech. A node either branches via
// Choices or falls through via Next; when both are authored, choices win.
type DialogNode struct {
	ID      string `json:"id" yaml:"id"`
	Speaker string `json:"speaker,omitempty" yaml:"speaker,omitempty"`
	Text    string `json:"text" yaml:"text"`

	Choices []Choice `json:"choices,omitempty" yaml:"choices,omitempty"`
	Next    string   `json:"next,omitempty" yaml:"next,omitempty"`
	Effects []Effect `json:"effects,omitempty" yaml:"effects,omitempty"`

	// Presentation overrides. Sticky: an unset value inherits the previous
	// node's resolved background/sprite.
	Background      string `json:"background,omitempty" yaml:"background,omitempty"`
	CharacterSprite string `json:"character_sprite,omitempty" yaml:"character_sprite,omitempty"`

	// ScriptID is the owning script, stamped by the loader. Content authors
	// never set it; it replaces id-prefix guessing when a node is resolved
	// outside its script (scene entry dialogs, loaded saves).
	ScriptID string `json:"-" yaml:"-"`
}

// Choice is one selectable branch on a dialog node. Condition gates
// visibility, not selection; callers filter before presenting.
type Choice struct {
	ID        string   `json:"id" yaml:"id"`
	Text      string   `json:"text" yaml:"text"`
	NextID    string   `json:"next_id" yaml:"next_id"`
	Condition string   `json:"condition,omitempty" yaml:"condition,omitempty"`
	Effects   []Effect `json:"effects,omitempty" yaml:"effects,omitempty"`
}

// Node returns the node with the given id, or nil if the script has no such node.
func (s *DialogScript) Node(id string) *DialogNode {
	if s == nil || id == "" {
		return nil
	}
	for i := range s.Nodes {
		if s.Nodes[i].ID == id {
			return &s.Nodes[i]
		}
	}
	return nil
}

// StartNode returns the script's designated start node, or nil.
func (s *DialogScript) StartNode() *DialogNode {
	if s == nil {
		return nil
	}
	return s.Node(s.StartNodeID)
}

// Choice returns the choice with the given id on this node, or nil.
func (n *DialogNode) Choice(id string) *Choice {
	if n == nil {
		return nil
	}
	for i := range n.Choices {
		if n.Choices[i].ID == id {
			return &n.Choices[i]
		}
	}
	return nil
}

// HasChoices reports whether the node presents choices to the player.
func (n *DialogNode) HasChoices() bool {
	return n != nil && len(n.Choices) > 0
}
