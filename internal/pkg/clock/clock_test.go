package clock

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFixed_Now(t *testing.T) {
	at := time.Date(2024, 6, 10, 18, 0, 0, 0, time.UTC)
	c := Fixed{At: at}
	assert.True(t, c.Now().Equal(at))
	assert.True(t, c.Now().Equal(c.Now()))
}

func TestSystem_NowIsUTC(t *testing.T) {
	assert.Equal(t, time.UTC, System{}.Now().Location())
}

func TestZones_Load(t *testing.T) {
	z := NewZones()

	loc, err := z.Load("Europe/Warsaw")
	require.NoError(t, err)
	assert.Equal(t, "Europe/Warsaw", loc.String())

	again, err := z.Load(" Europe/Warsaw ")
	require.NoError(t, err)
	assert.Same(t, loc, again)
}

func TestZones_LoadUnknown(t *testing.T) {
	z := NewZones()
	for _, name := range []string{"", "   ", "Mars/Olympus_Mons"} {
		_, err := z.Load(name)
		assert.True(t, errors.Is(err, ErrUnknownTimezone), "name %q", name)
	}
}

func TestZones_ConcurrentLoad(t *testing.T) {
	z := NewZones()
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := z.Load("UTC")
			assert.NoError(t, err)
		}()
	}
	wg.Wait()
}
