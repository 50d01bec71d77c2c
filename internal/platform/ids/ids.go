package ids

import (
	"crypto/rand"
	"encoding/hex"
)

// New returns a 16-byte random identifier as a hex string.
func New() string {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		panic("ids: read random: " + err.Error())
	}
	return hex.EncodeToString(b)
}
