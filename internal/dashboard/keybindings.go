package dashboard

import "github.com/rileyhilliard/gpumon/internal/screen"

// Key bindings as constants for consistency.
const (
	KeyQuit    = "q"
	KeyQuitAlt = "ctrl+c"
)

// QuitKeys returns the keys that stop the dashboard: quitKey (KeyQuit when
// empty) and Ctrl+C, which raw mode delivers as a key rather than a signal.
func QuitKeys(quitKey string) []screen.Key {
	if quitKey == "" {
		quitKey = KeyQuit
	}
	keys := []screen.Key{screen.Key(quitKey)}
	if quitKey != KeyQuitAlt {
		keys = append(keys, screen.Key(KeyQuitAlt))
	}
	return keys
}

// isQuitKey reports whether k is one of keys.
func isQuitKey(k screen.Key, keys []screen.Key) bool {
	for _, q := range keys {
		if k == q {
			return true
		}
	}
	return false
}
