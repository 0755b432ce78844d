// Package idx generates the ULID identifiers used for user records and
// request ids. ULIDs sort by creation time, which keeps listings stable.
package idx

import (
	"crypto/rand"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

type ID string

// Zero represents the zero value ID, only ever a placeholder.
const Zero ID = ""

// ErrInvalid reports a malformed ULID string.
var ErrInvalid = errors.New("idx: invalid ulid")

var (
	globalOnce sync.Once
	global     *generator
)

// generator hands out ULIDs from a monotonic source, so ids minted within
// the same millisecond still sort in call order.
type generator struct {
	mu      sync.Mutex
	entropy *ulid.MonotonicEntropy
}

func (g *generator) newAt(t time.Time) ID {
	g.mu.Lock()
	defer g.mu.Unlock()

	return ID(ulid.MustNew(ulid.Timestamp(t), g.entropy).String())
}

func gen() *generator {
	globalOnce.Do(func() {
		global = &generator{entropy: ulid.Monotonic(rand.Reader, 0)}
	})
	return global
}

// New returns a new ID stamped with the current UTC time.
func New() ID {
	return gen().newAt(time.Now().UTC())
}

// NewAt returns an ID stamped with t, for tests and seeded data.
func NewAt(t time.Time) ID {
	return gen().newAt(t.UTC())
}

// Parse validates s as a ULID. Path parameters go through here before they
// reach the store.
func Parse(s string) (ID, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Zero, ErrInvalid
	}
	if _, err := ulid.ParseStrict(s); err != nil {
		return Zero, ErrInvalid
	}
	return ID(s), nil
}

// Valid reports whether s is a well formed ULID.
func Valid(s string) bool {
	_, err := Parse(s)
	return err == nil
}

func (id ID) IsZero() bool { return id == Zero }

func (id ID) String() string { return string(id) }

// Time extracts the embedded UTC timestamp, or the zero time for invalid ids.
func (id ID) Time() time.Time {
	u, err := ulid.ParseStrict(id.String())
	if err != nil {
		return time.Time{}
	}
	return ulid.Time(u.Time()).UTC()
}

// Compare orders ids lexically, which for ULIDs is creation order.
func Compare(a, b ID) int {
	return strings.Compare(a.String(), b.String())
}
