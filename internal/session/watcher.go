// Package session keeps live table-session state. A Watcher polls the
// upstream session endpoint for one table token, retains the last good
// snapshot across transient failures, and fans the latest state out to
// subscribers. The Registry shares one Watcher per token between all
// viewers of that table.
package session

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"tablepay-gateway/internal/bill"
	"tablepay-gateway/internal/upstream"
)

// Fetcher is the slice of the upstream client a Watcher needs.
type Fetcher interface {
	GetSession(ctx context.Context, tableToken string) (*upstream.SessionEnvelope, error)
}

// Update is the state published to subscribers after each poll. Snapshot is
// the last successful fetch; it stays set while Err reports a newer failure,
// so viewers keep seeing the bill while the gateway retries.
type Update struct {
	Snapshot  *bill.Snapshot
	Err       error
	FetchedAt time.Time
}

// Watcher polls one table session. Create it through a Registry.
type Watcher struct {
	token   string
	fetcher Fetcher
	logger  *zap.Logger

	mu   sync.RWMutex
	last Update

	subMu sync.Mutex
	subs  map[chan Update]struct{}

	kick func()
}

func newWatcher(token string, fetcher Fetcher, logger *zap.Logger) *Watcher {
	return &Watcher{
		token:   token,
		fetcher: fetcher,
		logger:  logger,
		subs:    make(map[chan Update]struct{}),
	}
}

// Token returns the table token this watcher polls.
func (w *Watcher) Token() string { return w.token }

// Current returns the latest published state. Before the first poll
// completes the Snapshot is nil and Err is nil, which viewers render as
// loading.
func (w *Watcher) Current() Update {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.last
}

// Refresh requests an immediate out-of-band poll, used when a viewer comes
// back to a stale page or right after a payment settles.
func (w *Watcher) Refresh() {
	if w.kick != nil {
		w.kick()
	}
}

// Subscribe registers for updates. The channel holds only the most recent
// update; a slow receiver sees the latest state, not a backlog. The returned
// func unsubscribes.
func (w *Watcher) Subscribe() (<-chan Update, func()) {
	ch := make(chan Update, 1)

	w.subMu.Lock()
	w.subs[ch] = struct{}{}
	w.subMu.Unlock()

	if cur := w.Current(); cur.Snapshot != nil || cur.Err != nil {
		ch <- cur
	}

	cancel := func() {
		w.subMu.Lock()
		delete(w.subs, ch)
		w.subMu.Unlock()
	}
	return ch, cancel
}

func (w *Watcher) tick(ctx context.Context) {
	envelope, err := w.fetcher.GetSession(ctx, w.token)
	if ctx.Err() != nil {
		return
	}

	w.mu.Lock()
	if err != nil {
		// keep the last good snapshot, surface the failure alongside it
		w.last.Err = err
		w.logger.Warn("session poll failed",
			zap.String("tableToken", w.token),
			zap.Error(err))
	} else {
		w.last = Update{Snapshot: envelope.Snapshot(), FetchedAt: time.Now()}
	}
	update := w.last
	w.mu.Unlock()

	w.publish(update)
}

func (w *Watcher) publish(update Update) {
	w.subMu.Lock()
	defer w.subMu.Unlock()
	for ch := range w.subs {
		select {
		case ch <- update:
		default:
			// drop the stale buffered update, replace with the newest
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- update:
			default:
			}
		}
	}
}
