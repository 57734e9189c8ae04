package order

import (
	"crypto/rand"
	"fmt"
	"time"
)

// suffixAlphabet is Crockford base32: no ambiguous I, L, O, U.
const suffixAlphabet = "0123456789ABCDEFGHJKMNPQRSTVWXYZ"

const suffixLen = 5

// NewNumber generates an externally visible order number: wall-clock
// seconds for human-sortable familiarity, plus a random suffix so
// concurrent placements in the same second cannot collide. The orders
// table carries a UNIQUE constraint on the number as the final backstop.
func NewNumber(now time.Time) string {
	buf := make([]byte, suffixLen)
	if _, err := rand.Read(buf); err != nil {
		// crypto/rand never fails on supported platforms.
		panic(fmt.Sprintf("order number entropy: %v", err))
	}
	for i, b := range buf {
		buf[i] = suffixAlphabet[int(b)%len(suffixAlphabet)]
	}
	return fmt.Sprintf("%d-%s", now.Unix(), buf)
}
