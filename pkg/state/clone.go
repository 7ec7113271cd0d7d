package state

// Clone returns a deep copy of the save. Storage backends hand out clones so
// callers can never mutate stored state in place.
func (gs *GameSave) Clone() *GameSave {
	if gs == nil {
		return nil
	}
	cp := *gs
	// make+copy keeps empty slices empty; appending to a nil slice would
	// collapse them back to nil and undo Normalize.
	if gs.ReadDialogIDs != nil {
		cp.ReadDialogIDs = make([]string, len(gs.ReadDialogIDs))
		copy(cp.ReadDialogIDs, gs.ReadDialogIDs)
	}
	if gs.Inventory != nil {
		cp.Inventory = make([]Item, len(gs.Inventory))
		copy(cp.Inventory, gs.Inventory)
	}
	if gs.Memories != nil {
		cp.Memories = make([]Memory, len(gs.Memories))
		copy(cp.Memories, gs.Memories)
	}
	if gs.Achievements != nil {
		cp.Achievements = make([]string, len(gs.Achievements))
		copy(cp.Achievements, gs.Achievements)
	}
	if gs.Flags != nil {
		cp.Flags = make(map[string]any, len(gs.Flags))
		for k, v := range gs.Flags {
			cp.Flags[k] = v
		}
	}
	return &cp
}
