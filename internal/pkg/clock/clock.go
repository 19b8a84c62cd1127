package clock

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"
	_ "time/tzdata"
)

var ErrUnknownTimezone = errors.New("unknown timezone")

// Clock is the only source of "now" for shift computations.
type Clock interface {
	Now() time.Time
}

// System reads the wall clock in UTC.
type System struct{}

func (System) Now() time.Time {
	return time.Now().UTC()
}

// Fixed always returns the same instant. Used by jobs replays and tests.
type Fixed struct {
	At time.Time
}

func (f Fixed) Now() time.Time {
	return f.At
}

// Func adapts a plain function to Clock.
type Func func() time.Time

func (f Func) Now() time.Time {
	return f()
}

// Zones caches IANA locations. Safe for concurrent use.
type Zones struct {
	mu    sync.RWMutex
	cache map[string]*time.Location
}

func NewZones() *Zones {
	return &Zones{cache: make(map[string]*time.Location)}
}

// Load resolves an IANA timezone name such as "Europe/Warsaw".
func (z *Zones) Load(name string) (*time.Location, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: empty name", ErrUnknownTimezone)
	}

	z.mu.RLock()
	loc, ok := z.cache[name]
	z.mu.RUnlock()
	if ok {
		return loc, nil
	}

	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrUnknownTimezone, name)
	}

	z.mu.Lock()
	z.cache[name] = loc
	z.mu.Unlock()
	return loc, nil
}

var defaultZones = NewZones()

// LoadLocation resolves a timezone through the package level cache.
func LoadLocation(name string) (*time.Location, error) {
	return defaultZones.Load(name)
}
