package gameid

import (
	"testing"
	"time"

	"github.com/coder/quartz"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/oichokabu/internal/randutil"
)

func assertWellFormed(t *testing.T, id string) {
	t.Helper()
	require.Len(t, id, idLength)
	assert.LessOrEqual(t, id[0], byte('7'), "leading digit carries three bits")
	for _, c := range id {
		assert.Contains(t, alphabet, string(c))
	}
}

func TestGenerateIsWellFormed(t *testing.T) {
	t.Parallel()

	seen := make(map[string]bool)
	for range 100 {
		id := Generate()
		assertWellFormed(t, id)
		assert.False(t, seen[id], "duplicate %s", id)
		seen[id] = true
	}
}

func TestGeneratorIsDeterministic(t *testing.T) {
	t.Parallel()

	mClock := quartz.NewMock(t)

	a := NewGenerator(randutil.New(3), mClock).Generate()
	b := NewGenerator(randutil.New(3), mClock).Generate()
	assert.Equal(t, a, b)
	assertWellFormed(t, a)
}

func TestIDsSortByTime(t *testing.T) {
	t.Parallel()

	mClock := quartz.NewMock(t)
	gen := NewGenerator(randutil.New(3), mClock)

	first := gen.Generate()
	mClock.Advance(time.Second)
	second := gen.Generate()

	assert.Less(t, first, second)
}

func TestEncodeKnownValues(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "00000000000000000000000000", encode([16]byte{}))

	var ones [16]byte
	for i := range ones {
		ones[i] = 0xff
	}
	assert.Equal(t, "7zzzzzzzzzzzzzzzzzzzzzzzzz", encode(ones))
}

func TestTimePrefixFollowsClock(t *testing.T) {
	t.Parallel()

	mClock := quartz.NewMock(t)
	mClock.Set(time.UnixMilli(0x0123456789ab))

	a := NewGenerator(randutil.New(1), mClock).Generate()
	b := NewGenerator(nil, mClock).Generate()

	// 2 pad bits plus 48 bits of milliseconds fill the first ten digits.
	assert.Equal(t, a[:10], b[:10])
	assert.NotEqual(t, a, b)
}
