package ledger

import (
	"crypto/rand"

	"github.com/jxskiss/base62"
)

// NewID returns a short random record id.
func NewID() string {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		panic(err) // crypto/rand never fails on a sane system
	}
	return base62.EncodeToString(buf)
}
