package app

import "github.com/nhle/mail-triage/internal/keys"

// KeyMap is re-exported from the keys package so callers of app can build
// bindings without importing keys.
type KeyMap = keys.KeyMap

// DefaultKeyMap delegates to keys.DefaultKeyMap.
func DefaultKeyMap() *KeyMap {
	return keys.DefaultKeyMap()
}
