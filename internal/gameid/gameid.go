// Package gameid generates identifiers for sessions: a UUIDv7 rendered as 26
// characters of Crockford base32, so IDs sort by creation time.
package gameid

import (
	"crypto/rand"
	"strings"
	"time"

	"github.com/coder/quartz"
)

const (
	alphabet = "0123456789abcdefghjkmnpqrstvwxyz"
	idLength = 26
)

// RandSource supplies random bytes one at a time. *rand.Rand satisfies it.
type RandSource interface {
	IntN(n int) int
}

// Generator produces session IDs.
type Generator struct {
	rand  RandSource // nil uses crypto/rand
	clock quartz.Clock
}

// NewGenerator creates a generator. A nil rand uses crypto/rand and a nil
// clock uses the wall clock.
func NewGenerator(rand RandSource, clock quartz.Clock) *Generator {
	if clock == nil {
		clock = quartz.NewReal()
	}
	return &Generator{rand: rand, clock: clock}
}

var defaultGenerator = NewGenerator(nil, nil)

// Generate returns a new ID from crypto/rand and the wall clock.
func Generate() string {
	return defaultGenerator.Generate()
}

// Generate returns a new ID.
func (g *Generator) Generate() string {
	return encode(g.uuid(g.clock.Now()))
}

func (g *Generator) uuid(now time.Time) [16]byte {
	var id [16]byte

	ms := now.UnixMilli()
	for i := range 6 {
		id[i] = byte(ms >> (40 - 8*i))
	}

	if g.rand != nil {
		for i := 6; i < len(id); i++ {
			id[i] = byte(g.rand.IntN(256))
		}
	} else if _, err := rand.Read(id[6:]); err != nil {
		panic("gameid: reading random bytes: " + err.Error())
	}

	id[6] = id[6]&0x0f | 0x70 // version 7
	id[8] = id[8]&0x3f | 0x80 // RFC 4122 variant
	return id
}

// encode renders 128 bits as 26 base32 digits, most significant first. The
// leading digit carries only three bits.
func encode(id [16]byte) string {
	var b strings.Builder
	b.Grow(idLength)

	var acc uint32
	bits := 2 // pad to 130 bits
	for _, by := range id {
		acc = acc<<8 | uint32(by)
		bits += 8
		for bits >= 5 {
			bits -= 5
			b.WriteByte(alphabet[(acc>>bits)&0x1f])
		}
	}
	return b.String()
}
