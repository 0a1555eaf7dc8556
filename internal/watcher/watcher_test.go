package watcher

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTemplateWatcher_StopDuringEventBurst(t *testing.T) {
	tw, err := New(time.Millisecond, nil)
	require.NoError(t, err)

	// Stop while adds keep reassigning the debounce timer; under the race
	// detector this exercises the shutdown path.
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 200; i++ {
			tw.debouncer.add(ChangeEvent{Type: EventTypeModified, Path: "a.tpl"})
		}
	}()

	assert.NoError(t, tw.Stop())
	wg.Wait()
}

func TestDebouncer_FlushDeduplicatesByPath(t *testing.T) {
	d := &debouncer{
		delay:  time.Hour,
		events: make(chan ChangeEvent, 10),
		output: make(chan []ChangeEvent, 1),
	}

	d.add(ChangeEvent{Type: EventTypeCreated, Path: "a.tpl"})
	d.add(ChangeEvent{Type: EventTypeModified, Path: "a.tpl"})
	d.add(ChangeEvent{Type: EventTypeModified, Path: "b.tpl"})
	d.flush()

	select {
	case events := <-d.output:
		assert.Len(t, events, 2)
	default:
		t.Fatal("expected a flushed batch")
	}

	d.stop()
}
