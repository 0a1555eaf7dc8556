// Package watcher watches the template root for changes and triggers
// dependency-aware recompilation, with debouncing so editor save bursts
// produce one rebuild.
package watcher

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/tephra-dev/tephra/internal/logging"
)

// TemplateWatcher watches for template file changes with debouncing.
type TemplateWatcher struct {
	watcher   *fsnotify.Watcher
	debouncer *debouncer
	filters   []FileFilter
	handlers  []ChangeHandler
	logger    logging.Logger
	mutex     sync.RWMutex
}

// ChangeEvent represents one template file change.
type ChangeEvent struct {
	Type    EventType
	Path    string
	ModTime time.Time
}

// EventType represents the type of file change
type EventType int

const (
	EventTypeCreated EventType = iota
	EventTypeModified
	EventTypeDeleted
	EventTypeRenamed
)

// String returns the string representation of the EventType
func (e EventType) String() string {
	switch e {
	case EventTypeCreated:
		return "created"
	case EventTypeModified:
		return "modified"
	case EventTypeDeleted:
		return "deleted"
	case EventTypeRenamed:
		return "renamed"
	default:
		return "unknown"
	}
}

// FileFilter determines if a file should be watched
type FileFilter func(path string) bool

// ChangeHandler handles debounced batches of change events.
type ChangeHandler func(events []ChangeEvent) error

// ExtensionFilter keeps only files with the given extension.
func ExtensionFilter(ext string) FileFilter {
	return func(path string) bool {
		return filepath.Ext(path) == ext
	}
}

// New creates a template watcher.
func New(debounceDelay time.Duration, logger logging.Logger) (*TemplateWatcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	if logger == nil {
		logger = logging.NopLogger{}
	}

	return &TemplateWatcher{
		watcher: fsw,
		debouncer: &debouncer{
			delay:  debounceDelay,
			events: make(chan ChangeEvent, 100),
			output: make(chan []ChangeEvent, 10),
		},
		logger: logger.WithComponent("watcher"),
	}, nil
}

// AddFilter adds a file filter
func (tw *TemplateWatcher) AddFilter(filter FileFilter) {
	tw.mutex.Lock()
	defer tw.mutex.Unlock()
	tw.filters = append(tw.filters, filter)
}

// AddHandler adds a change handler
func (tw *TemplateWatcher) AddHandler(handler ChangeHandler) {
	tw.mutex.Lock()
	defer tw.mutex.Unlock()
	tw.handlers = append(tw.handlers, handler)
}

// AddRecursive adds a directory and all subdirectories to watch.
func (tw *TemplateWatcher) AddRecursive(root string) error {
	return filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return tw.watcher.Add(path)
		}
		return nil
	})
}

// Start starts the watcher goroutines. They stop when ctx is cancelled.
func (tw *TemplateWatcher) Start(ctx context.Context) {
	go tw.debouncer.run(ctx)
	go tw.dispatch(ctx)
	go tw.watchLoop(ctx)
}

// Stop stops the watcher and cleans up resources.
func (tw *TemplateWatcher) Stop() error {
	tw.debouncer.stop()
	return tw.watcher.Close()
}

func (tw *TemplateWatcher) watchLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case event := <-tw.watcher.Events:
			tw.handleEvent(event)
		case err := <-tw.watcher.Errors:
			tw.logger.Warn(ctx, err, "watch error")
		}
	}
}

func (tw *TemplateWatcher) handleEvent(event fsnotify.Event) {
	tw.mutex.RLock()
	filters := tw.filters
	tw.mutex.RUnlock()

	for _, filter := range filters {
		if !filter(event.Name) {
			return
		}
	}

	var modTime time.Time
	if info, err := os.Stat(event.Name); err == nil {
		modTime = info.ModTime()
	}

	var eventType EventType
	switch {
	case event.Op&fsnotify.Create == fsnotify.Create:
		eventType = EventTypeCreated
	case event.Op&fsnotify.Write == fsnotify.Write:
		eventType = EventTypeModified
	case event.Op&fsnotify.Remove == fsnotify.Remove:
		eventType = EventTypeDeleted
	case event.Op&fsnotify.Rename == fsnotify.Rename:
		eventType = EventTypeRenamed
	default:
		eventType = EventTypeModified
	}

	select {
	case tw.debouncer.events <- ChangeEvent{Type: eventType, Path: event.Name, ModTime: modTime}:
	default:
		// Channel full, skip this event
	}
}

func (tw *TemplateWatcher) dispatch(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case events := <-tw.debouncer.output:
			tw.mutex.RLock()
			handlers := tw.handlers
			tw.mutex.RUnlock()

			for _, handler := range handlers {
				if err := handler(events); err != nil {
					tw.logger.Warn(ctx, err, "change handler failed")
				}
			}
		}
	}
}

// debouncer groups rapid file changes together.
type debouncer struct {
	delay   time.Duration
	events  chan ChangeEvent
	output  chan []ChangeEvent
	timer   *time.Timer
	pending []ChangeEvent
	mutex   sync.Mutex
}

func (d *debouncer) run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case event := <-d.events:
			d.add(event)
		}
	}
}

func (d *debouncer) add(event ChangeEvent) {
	d.mutex.Lock()
	defer d.mutex.Unlock()

	d.pending = append(d.pending, event)

	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.delay, d.flush)
}

// stop cancels any pending flush. The timer field is only touched under the
// mutex, so stop may race a concurrent add safely.
func (d *debouncer) stop() {
	d.mutex.Lock()
	defer d.mutex.Unlock()

	if d.timer != nil {
		d.timer.Stop()
	}
}

func (d *debouncer) flush() {
	d.mutex.Lock()
	defer d.mutex.Unlock()

	if len(d.pending) == 0 {
		return
	}

	// Deduplicate events by path
	byPath := make(map[string]ChangeEvent, len(d.pending))
	for _, event := range d.pending {
		byPath[event.Path] = event
	}

	events := make([]ChangeEvent, 0, len(byPath))
	for _, event := range byPath {
		events = append(events, event)
	}

	select {
	case d.output <- events:
	default:
		// Channel full, skip
	}

	d.pending = d.pending[:0]
}
