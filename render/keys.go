package render

import doom "github.com/aleskucera/DOOM"

// KeyAgent lets a person pick actions with the keyboard
// of a Window.
type KeyAgent struct {
	Window *Window

	// KeyMap maps lower case letters to actions.
	// If nil, doom.DefaultKeyMap is used.
	KeyMap map[rune]int

	// Noop is the action when no mapped key is held.
	Noop int
}

// Act returns the action of the first held key.
func (k *KeyAgent) Act(obs doom.Observation) int {
	keyMap := k.KeyMap
	if keyMap == nil {
		keyMap = doom.DefaultKeyMap
	}
	for _, r := range k.Window.Pressed() {
		if action, ok := keyMap[r]; ok {
			return action
		}
	}
	return k.Noop
}
