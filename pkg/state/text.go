package state

import (
	"regexp"

	"github.com/inkwell-games/novel-engine/pkg/conditions"
)

var textToken = regexp.MustCompile(`\{([a-zA-Z0-9_]+)\}`)

// ExpandText substitutes {token} references in authored dialog text with
// save-scoped values: {player_name} resolves to the player's name, any other
// token to the string-coerced flag of that name. Unknown tokens are left
// verbatim so authoring mistakes stay visible.
func (gs *GameSave) ExpandText(text string) string {
	return textToken.ReplaceAllStringFunc(text, func(match string) string {
		token := match[1 : len(match)-1]
		if token == "player_name" {
			return gs.PlayerName
		}
		if v, ok := gs.Flags[token]; ok {
			return conditions.Coerce(v)
		}
		return match
	})
}
