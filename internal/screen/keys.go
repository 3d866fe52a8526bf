package screen

import "unicode/utf8"

// Key is a decoded keypress, named the way bubbletea names keys:
// printable keys are the character itself ("q"), others are names such as
// "ctrl+c", "enter", "esc" or "up".
type Key string

func (k Key) String() string { return string(k) }

// Named keys.
const (
	KeyCtrlC     Key = "ctrl+c"
	KeyEnter     Key = "enter"
	KeyTab       Key = "tab"
	KeyBackspace Key = "backspace"
	KeyEsc       Key = "esc"
	KeyUp        Key = "up"
	KeyDown      Key = "down"
	KeyRight     Key = "right"
	KeyLeft      Key = "left"
)

// punctControlKeys names the control bytes past ctrl+z.
var punctControlKeys = map[byte]Key{
	0x1c: "ctrl+\\",
	0x1d: "ctrl+]",
	0x1e: "ctrl+^",
	0x1f: "ctrl+_",
}

var csiKeys = map[byte]Key{
	'A': KeyUp,
	'B': KeyDown,
	'C': KeyRight,
	'D': KeyLeft,
}

// decodeKeys turns raw-mode input bytes into keys. Escape sequences other
// than the arrow keys are dropped whole.
func decodeKeys(b []byte) []Key {
	var keys []Key
	for i := 0; i < len(b); {
		c := b[i]
		switch {
		case c == 0x1b:
			if i+1 >= len(b) {
				keys = append(keys, KeyEsc)
				i++
				continue
			}
			n, key := escapeSequence(b[i:])
			if key != "" {
				keys = append(keys, key)
			}
			i += n
		case c == '\r' || c == '\n':
			keys = append(keys, KeyEnter)
			i++
		case c == '\t':
			keys = append(keys, KeyTab)
			i++
		case c == 0x7f || c == 0x08:
			keys = append(keys, KeyBackspace)
			i++
		case c == 0x03:
			keys = append(keys, KeyCtrlC)
			i++
		case c == 0x00:
			keys = append(keys, Key("ctrl+@"))
			i++
		case c >= 0x1c && c < 0x20:
			keys = append(keys, punctControlKeys[c])
			i++
		case c < 0x20:
			keys = append(keys, Key("ctrl+"+string(rune('a'+c-1))))
			i++
		default:
			r, size := utf8.DecodeRune(b[i:])
			if r != utf8.RuneError {
				keys = append(keys, Key(string(r)))
			}
			i += size
		}
	}
	return keys
}

// escapeSequence measures the sequence starting at b[0] == ESC and names it
// if it is a known key.
func escapeSequence(b []byte) (int, Key) {
	switch b[1] {
	case '[', 'O':
		// CSI/SS3: parameters then one final byte in 0x40-0x7E.
		for j := 2; j < len(b); j++ {
			if b[j] >= 0x40 && b[j] <= 0x7e {
				if j == 2 || b[1] == 'O' {
					return j + 1, csiKeys[b[j]]
				}
				return j + 1, ""
			}
		}
		return len(b), ""
	case 0x1b:
		return 1, KeyEsc
	default:
		// Alt+key
		_, size := utf8.DecodeRune(b[1:])
		return 1 + size, ""
	}
}
