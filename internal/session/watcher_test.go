package session

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/zap"

	"tablepay-gateway/internal/upstream"
)

type fakeFetcher struct {
	mu       sync.Mutex
	envelope *upstream.SessionEnvelope
	err      error
	calls    atomic.Int64
}

func (f *fakeFetcher) set(envelope *upstream.SessionEnvelope, err error) {
	f.mu.Lock()
	f.envelope, f.err = envelope, err
	f.mu.Unlock()
}

func (f *fakeFetcher) GetSession(ctx context.Context, token string) (*upstream.SessionEnvelope, error) {
	f.calls.Add(1)
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.envelope, f.err
}

func envelopeWithTotal(total int64) *upstream.SessionEnvelope {
	remaining := upstream.FlexInt(total)
	return &upstream.SessionEnvelope{
		Session: &upstream.SessionInfo{
			ID:       "s1",
			Table:    upstream.TableInfo{Label: "T1", Token: "table-1"},
			Currency: "USD",
			Status:   "open",
		},
		Check: &upstream.CheckInfo{
			Total:    upstream.FlexInt(total),
			Currency: "USD",
		},
		Remaining: &remaining,
	}
}

func waitForUpdate(t *testing.T, cond func(Update) bool, w *Watcher) Update {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		if cur := w.Current(); cond(cur) {
			return cur
		}
		select {
		case <-deadline:
			t.Fatalf("state not reached; last = %+v", w.Current())
		case <-time.After(2 * time.Millisecond):
		}
	}
}

func TestWatcherRetainsLastGoodAcrossFailures(t *testing.T) {
	fetcher := &fakeFetcher{}
	fetcher.set(envelopeWithTotal(10000), nil)

	reg := NewRegistry(fetcher, 5*time.Millisecond, zap.NewNop(), nil)
	defer reg.Close()

	w, release := reg.Acquire("table-1")
	defer release()

	good := waitForUpdate(t, func(u Update) bool { return u.Snapshot != nil }, w)
	if good.Snapshot.Total != 10000 {
		t.Fatalf("Total = %d", good.Snapshot.Total)
	}

	fetcher.set(nil, errors.New("upstream down"))
	degraded := waitForUpdate(t, func(u Update) bool { return u.Err != nil }, w)
	if degraded.Snapshot == nil || degraded.Snapshot.Total != 10000 {
		t.Fatalf("last good snapshot lost during outage: %+v", degraded.Snapshot)
	}

	fetcher.set(envelopeWithTotal(12000), nil)
	recovered := waitForUpdate(t, func(u Update) bool {
		return u.Err == nil && u.Snapshot != nil && u.Snapshot.Total == 12000
	}, w)
	if recovered.Err != nil {
		t.Fatalf("error not cleared after recovery: %v", recovered.Err)
	}
}

func TestSubscribeDeliversLatestNotBacklog(t *testing.T) {
	fetcher := &fakeFetcher{}
	fetcher.set(envelopeWithTotal(1000), nil)

	reg := NewRegistry(fetcher, 2*time.Millisecond, zap.NewNop(), nil)
	defer reg.Close()

	w, release := reg.Acquire("table-1")
	defer release()
	waitForUpdate(t, func(u Update) bool { return u.Snapshot != nil }, w)

	ch, cancel := w.Subscribe()
	defer cancel()

	// let several polls land while we do not read; the buffer must hold
	// only the newest state
	fetcher.set(envelopeWithTotal(7000), nil)
	deadline := time.After(2 * time.Second)
	for {
		var got Update
		select {
		case got = <-ch:
		case <-deadline:
			t.Fatal("no update delivered")
		}
		if got.Snapshot != nil && got.Snapshot.Total == 7000 {
			return
		}
	}
}

func TestRegistrySharesWatcherPerToken(t *testing.T) {
	fetcher := &fakeFetcher{}
	fetcher.set(envelopeWithTotal(1), nil)

	reg := NewRegistry(fetcher, time.Hour, zap.NewNop(), nil)
	defer reg.Close()

	w1, release1 := reg.Acquire("table-1")
	w2, release2 := reg.Acquire("table-1")
	if w1 != w2 {
		t.Fatal("same token must share one watcher")
	}

	release1()
	release1() // double release of one handle must not decrement twice
	reg.mu.Lock()
	_, alive := reg.entries["table-1"]
	reg.mu.Unlock()
	if !alive {
		t.Fatal("watcher stopped while a holder remains")
	}

	release2()
	reg.mu.Lock()
	_, ok := reg.entries["table-1"]
	reg.mu.Unlock()
	if ok {
		t.Fatal("watcher not torn down after last release")
	}
}

func TestRefreshForcesImmediatePoll(t *testing.T) {
	fetcher := &fakeFetcher{}
	fetcher.set(envelopeWithTotal(1), nil)

	reg := NewRegistry(fetcher, time.Hour, zap.NewNop(), nil)
	defer reg.Close()

	w, release := reg.Acquire("table-1")
	defer release()
	waitForUpdate(t, func(u Update) bool { return u.Snapshot != nil }, w)

	before := fetcher.calls.Load()
	w.Refresh()
	deadline := time.After(2 * time.Second)
	for fetcher.calls.Load() == before {
		select {
		case <-deadline:
			t.Fatal("Refresh did not trigger a poll")
		case <-time.After(2 * time.Millisecond):
		}
	}
}

func TestRegistryReportsTickOutcomes(t *testing.T) {
	fetcher := &fakeFetcher{}
	fetcher.set(nil, errors.New("boom"))

	var ok, failed atomic.Int64
	reg := NewRegistry(fetcher, 3*time.Millisecond, zap.NewNop(), func(good bool) {
		if good {
			ok.Add(1)
		} else {
			failed.Add(1)
		}
	})
	defer reg.Close()

	w, release := reg.Acquire("table-1")
	defer release()

	waitForUpdate(t, func(u Update) bool { return u.Err != nil }, w)
	if failed.Load() == 0 {
		t.Fatal("failed ticks not observed")
	}

	fetcher.set(envelopeWithTotal(500), nil)
	waitForUpdate(t, func(u Update) bool { return u.Err == nil && u.Snapshot != nil }, w)
	deadline := time.After(2 * time.Second)
	for ok.Load() == 0 {
		select {
		case <-deadline:
			t.Fatal("successful ticks not observed")
		case <-time.After(2 * time.Millisecond):
		}
	}
}
