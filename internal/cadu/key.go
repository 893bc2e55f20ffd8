package cadu

import "strings"

// Key is one symbol of the fixed input alphabet. Anything outside the
// alphabet is ignored by the device.
type Key string

const (
	KeyUp     Key = "UP"
	KeyDown   Key = "DOWN"
	KeyF1     Key = "F1"
	KeyF2     Key = "F2"
	KeyF3     Key = "F3"
	KeyF4     Key = "F4"
	KeyAccept Key = "ACCEPT"
	KeyQuit   Key = "QUIT"
)

// keyAliases maps raw host tokens onto the symbolic alphabet. The physical
// unit labels the accept key DO, so both spellings are accepted.
var keyAliases = map[string]Key{
	"UP":     KeyUp,
	"DOWN":   KeyDown,
	"DN":     KeyDown,
	"F1":     KeyF1,
	"F2":     KeyF2,
	"F3":     KeyF3,
	"F4":     KeyF4,
	"ACCEPT": KeyAccept,
	"DO":     KeyAccept,
	"ENTER":  KeyAccept,
	"QUIT":   KeyQuit,
	"Q":      KeyQuit,
}

// ParseKey decodes a raw key token into a symbol. ok is false for tokens
// outside the alphabet; callers treat those as a no-op.
func ParseKey(token string) (Key, bool) {
	k, ok := keyAliases[strings.ToUpper(strings.TrimSpace(token))]
	return k, ok
}
