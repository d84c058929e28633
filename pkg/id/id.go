package id

import (
	cryptoRand "crypto/rand"
	"encoding/binary"
	"io"
	"math/rand"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

// Generator issues ULIDs. Ids issued for the same millisecond stay
// lexicographically increasing.
type Generator struct {
	mu      sync.Mutex
	entropy io.Reader
}

// NewGenerator wraps src in monotonic ULID entropy. A nil src is seeded
// from crypto/rand.
func NewGenerator(src io.Reader) *Generator {
	if src == nil {
		var seed int64
		_ = binary.Read(cryptoRand.Reader, binary.LittleEndian, &seed)
		if seed == 0 {
			seed = time.Now().UnixNano()
		}
		src = rand.New(rand.NewSource(seed))
	}
	return &Generator{entropy: ulid.Monotonic(src, 0)}
}

// At returns an id whose time component is t, so rows replayed from history
// sort by when the trade happened rather than when it was journaled.
func (g *Generator) At(t time.Time) string {
	g.mu.Lock()
	defer g.mu.Unlock()

	id, err := ulid.New(ulid.Timestamp(t.UTC()), g.entropy)
	if err != nil {
		// Only reachable if entropy fails or the monotonic counter overflows
		// within one millisecond.
		panic(err)
	}
	return id.String()
}

var std = NewGenerator(nil)

// New returns an id stamped with the current time.
func New() string { return std.At(time.Now()) }

// At returns an id stamped with t from the package generator.
func At(t time.Time) string { return std.At(t) }

// Time extracts the timestamp encoded in an id.
func Time(s string) (time.Time, error) {
	u, err := ulid.ParseStrict(s)
	if err != nil {
		return time.Time{}, err
	}
	return ulid.Time(u.Time()), nil
}
