package dedup

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestReplayWithinTTLIsDropped(t *testing.T) {
	now := time.Date(2025, 8, 22, 10, 0, 0, 0, time.UTC)
	d := New(time.Minute, 10).WithClock(func() time.Time { return now })

	assert.True(t, d.ShouldProcess("a"))
	assert.False(t, d.ShouldProcess("a"))
	assert.True(t, d.ShouldProcess(""))
	assert.True(t, d.ShouldProcess(""))

	now = now.Add(2 * time.Minute)
	assert.True(t, d.ShouldProcess("a"), "expired ids are accepted again")
}

func TestPayloadHashing(t *testing.T) {
	d := New(time.Minute, 10)
	assert.True(t, d.ShouldProcessPayload([]byte(`{"1":{}}`)))
	assert.False(t, d.ShouldProcessPayload([]byte(`{"1":{}}`)))
	assert.True(t, d.ShouldProcessPayload([]byte(`{"2":{}}`)))
}

func TestCapEvictsExpired(t *testing.T) {
	now := time.Date(2025, 8, 22, 10, 0, 0, 0, time.UTC)
	d := New(time.Second, 3).WithClock(func() time.Time { return now })
	for i := 0; i < 3; i++ {
		d.ShouldProcess(fmt.Sprint(i))
	}
	now = now.Add(time.Minute)
	d.ShouldProcess("fresh")
	assert.LessOrEqual(t, d.Len(), 3)
}

func TestDefaults(t *testing.T) {
	d := New(0, 0)
	assert.Equal(t, 10*time.Minute, d.ttl)
	assert.Equal(t, 10000, d.max)
}

func TestCapEvictsEarliestLiveEntry(t *testing.T) {
	now := time.Date(2025, 8, 22, 10, 0, 0, 0, time.UTC)
	d := New(time.Hour, 3).WithClock(func() time.Time { return now })
	for i := 0; i < 10; i++ {
		assert.True(t, d.ShouldProcess(fmt.Sprint(i)))
		now = now.Add(time.Second)
	}
	assert.Equal(t, 3, d.Len())

	// the newest ids are still remembered, the oldest were evicted
	assert.False(t, d.ShouldProcess("9"))
	assert.False(t, d.ShouldProcess("8"))
	assert.True(t, d.ShouldProcess("0"))
	assert.Equal(t, 3, d.Len())
}
