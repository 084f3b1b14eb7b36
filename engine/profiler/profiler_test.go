package profiler

import (
	"bytes"
	"log"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestProfiler_Tick(t *testing.T) {
	var buf bytes.Buffer
	p := NewProfiler(log.New(&buf, "", 0))
	p.SetInterval(time.Hour)

	assert.False(t, p.Tick(false))
	assert.False(t, p.Tick(true))
	assert.Empty(t, buf.String())

	p.SetInterval(time.Millisecond)
	time.Sleep(2 * time.Millisecond)
	assert.True(t, p.Tick(false))
	assert.Contains(t, buf.String(), "[Profiler] Loads:")
	assert.Contains(t, buf.String(), "Failed: 1")
}

func TestProfiler_Report(t *testing.T) {
	var buf bytes.Buffer
	p := NewProfiler(log.New(&buf, "", 0))
	p.SetInterval(time.Hour)
	p.Tick(false)
	p.Tick(true)
	p.Tick(false)

	loads, fails := p.Report()
	assert.Equal(t, 3, loads)
	assert.Equal(t, 1, fails)
	assert.Contains(t, buf.String(), "3 loads (1 failed)")
}

func TestProfiler_SetIntervalIgnoresTiny(t *testing.T) {
	p := NewProfiler(nil)
	p.SetInterval(time.Microsecond)
	assert.Equal(t, time.Second, p.updateInterval)
}
