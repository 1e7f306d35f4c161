// Package roundid generates sortable identifiers for game rounds.
//
// IDs are UUIDv7 values (millisecond timestamp first) rendered in Crockford
// base32, so they sort by creation time and fit in 26 characters.
package roundid

import (
	"crypto/rand"
	"encoding/base32"
	"fmt"
	"strings"

	"github.com/coder/quartz"
)

const alphabet = "0123456789abcdefghjkmnpqrstvwxyz"

var encoding = base32.NewEncoding(alphabet).WithPadding(base32.NoPadding)

// RandSource supplies random bytes. *rand.Rand from math/rand/v2 satisfies it
// through IntN; tests pass a seeded one for stable IDs.
type RandSource interface {
	IntN(n int) int
}

// Generator creates round IDs
type Generator struct {
	clock quartz.Clock
	rand  RandSource
}

// NewGenerator creates a generator. A nil clock means wall time and a nil
// RandSource means crypto/rand.
func NewGenerator(clock quartz.Clock, src RandSource) *Generator {
	if clock == nil {
		clock = quartz.NewReal()
	}
	return &Generator{clock: clock, rand: src}
}

// New returns a fresh round ID
func (g *Generator) New() string {
	var id [16]byte

	ms := g.clock.Now().UnixMilli()
	for i := 0; i < 6; i++ {
		id[i] = byte(ms >> (40 - 8*i))
	}

	if g.rand != nil {
		for i := 6; i < len(id); i++ {
			id[i] = byte(g.rand.IntN(256))
		}
	} else if _, err := rand.Read(id[6:]); err != nil {
		panic("failed to generate random bytes: " + err.Error())
	}

	id[6] = (id[6] & 0x0f) | 0x70 // version 7
	id[8] = (id[8] & 0x3f) | 0x80 // RFC 4122 variant

	return encoding.EncodeToString(id[:])
}

// Validate checks that id looks like a value produced by Generator.New
func Validate(id string) error {
	if len(id) != 26 {
		return fmt.Errorf("round ID must be exactly 26 characters, got %d", len(id))
	}
	for i, r := range id {
		if !strings.ContainsRune(alphabet, r) {
			return fmt.Errorf("invalid character %c at position %d", r, i)
		}
	}
	raw, err := encoding.DecodeString(id)
	if err != nil {
		return fmt.Errorf("round ID does not decode: %w", err)
	}
	if raw[6]>>4 != 7 {
		return fmt.Errorf("round ID is not version 7")
	}
	return nil
}
