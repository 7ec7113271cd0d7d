package content

// Phase is one coarse stage of the story. The ordered set of phases is
// declared by the Story document; the engine never hardcodes phase names.
type Phase string

// Scene is a location/backdrop bound to a phase. Entering a scene with an
// EntryDialogID starts that dialog immediately.
type Scene struct {
	ID            string    `json:"id" yaml:"id"`
	Phase         Phase     `json:"phase" yaml:"phase"`
	Background    string    `json:"background,omitempty" yaml:"background,omitempty"`
	Hotspots      []Hotspot `json:"hotspots,omitempty" yaml:"hotspots,omitempty"`
	EntryDialogID string    `json:"entry_dialog_id,omitempty" yaml:"entry_dialog_id,omitempty"`
}

// Hotspot is an interactive region of a scene. It targets either another
// scene or a dialog script; both being empty is a purely decorative hotspot.
type Hotspot struct {
	ID       string `json:"id" yaml:"id"`
	Label    string `json:"label,omitempty" yaml:"label,omitempty"`
	SceneID  string `json:"scene_id,omitempty" yaml:"scene_id,omitempty"`
	ScriptID string `json:"script_id,omitempty" yaml:"script_id,omitempty"`
}
