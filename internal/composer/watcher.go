// internal/composer/watcher.go
package composer

import (
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/mintfeed/mintfeed-cli/internal/dom"
)

// Watcher observes structural document mutations and keeps a bounded,
// time-windowed set of freshly-appeared compose candidates so the locator
// does not have to re-scan the whole document on every interaction.
//
// The watcher has an explicit Start/Stop lifecycle: an orphaned subscription
// would keep holding references into a detached document tree after the page
// navigates away.
type Watcher struct {
	cfg       Config
	validator *Validator
	source    dom.MutationSource
	logger    *zap.Logger

	mu      sync.Mutex
	entries []recentEntry
	started bool

	unsubscribe func()
	done        chan struct{}
	wg          sync.WaitGroup

	now func() time.Time
}

type recentEntry struct {
	el   dom.Element
	seen time.Time
}

// NewWatcher builds a stopped watcher.
func NewWatcher(source dom.MutationSource, validator *Validator, cfg Config, logger *zap.Logger) *Watcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Watcher{
		cfg:       cfg,
		validator: validator,
		source:    source,
		logger:    logger,
		now:       time.Now,
	}
}

// Start subscribes to mutations and launches the periodic sweep.
func (w *Watcher) Start() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.started {
		return fmt.Errorf("watcher already started")
	}
	w.started = true
	w.done = make(chan struct{})
	w.unsubscribe = w.source.Subscribe(w.onMutation)

	w.wg.Add(1)
	go w.sweepLoop()
	return nil
}

// Stop unsubscribes, stops the sweep and clears the candidate set. It is safe
// to call more than once.
func (w *Watcher) Stop() {
	w.mu.Lock()
	if !w.started {
		w.mu.Unlock()
		return
	}
	w.started = false
	unsubscribe := w.unsubscribe
	w.unsubscribe = nil
	close(w.done)
	w.entries = nil
	w.mu.Unlock()

	if unsubscribe != nil {
		unsubscribe()
	}
	w.wg.Wait()
}

// Recent returns still-attached candidates, newest first. Staleness is
// re-checked at read time: a node may have gone away between insertion and
// read without a matching removal record.
func (w *Watcher) Recent() []dom.Element {
	w.mu.Lock()
	defer w.mu.Unlock()

	cutoff := w.now().Add(-w.cfg.RecentTTL)
	var out []dom.Element
	for i := len(w.entries) - 1; i >= 0; i-- {
		e := w.entries[i]
		if e.seen.Before(cutoff) || !e.el.Attached() {
			continue
		}
		out = append(out, e.el)
	}
	return out
}

// onMutation runs synchronously inside the mutation delivery; it must stay
// cheap or it backs up the observer.
func (w *Watcher) onMutation(m dom.Mutation) {
	for _, added := range m.Added {
		for _, cand := range added.QueryAll(composeSurfaceScopedXPath) {
			if w.validator.IsValidComposeArea(cand) {
				w.remember(cand)
			}
		}
	}
	if len(m.Removed) > 0 {
		w.evictDetached()
	}
}

func (w *Watcher) remember(el dom.Element) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.started {
		return
	}
	for i, e := range w.entries {
		if e.el == el {
			w.entries[i].seen = w.now()
			return
		}
	}
	w.entries = append(w.entries, recentEntry{el: el, seen: w.now()})
	if len(w.entries) > w.cfg.MaxRecent {
		w.entries = w.entries[len(w.entries)-w.cfg.MaxRecent:]
	}
}

func (w *Watcher) evictDetached() {
	w.mu.Lock()
	defer w.mu.Unlock()
	kept := w.entries[:0]
	for _, e := range w.entries {
		if e.el.Attached() {
			kept = append(kept, e)
		}
	}
	w.entries = kept
}

// sweepLoop drops stale entries on a fixed interval, independent of mutation
// delivery, to bound memory even when removal records were missed.
func (w *Watcher) sweepLoop() {
	defer w.wg.Done()
	ticker := time.NewTicker(w.cfg.SweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-w.done:
			return
		case <-ticker.C:
			w.sweep()
		}
	}
}

func (w *Watcher) sweep() {
	w.mu.Lock()
	defer w.mu.Unlock()
	cutoff := w.now().Add(-w.cfg.RecentTTL)
	kept := w.entries[:0]
	for _, e := range w.entries {
		if e.seen.Before(cutoff) || !e.el.Attached() {
			continue
		}
		kept = append(kept, e)
	}
	if dropped := len(w.entries) - len(kept); dropped > 0 {
		w.logger.Debug("swept stale compose candidates", zap.Int("dropped", dropped))
	}
	w.entries = kept
}
