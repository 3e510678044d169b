// Package poll provides the fixed-interval refresh loop behind the portal's
// live views. One Poller owns one remote resource: it guarantees at most one
// in-flight fetch at a time and hands every fetch a monotonically increasing
// sequence number so snapshot stores can fence out responses that resolve
// late and stale.
package poll

import (
	"context"
	"sync/atomic"
	"time"
)

// FetchFunc performs one fetch cycle. seq identifies the cycle; pass it to
// the target store's Replace so a slower earlier cycle cannot clobber a
// later one.
type FetchFunc func(ctx context.Context, seq uint64) error

type Poller struct {
	interval time.Duration
	fetch    FetchFunc

	seq      uint64
	inflight uint32
}

func New(interval time.Duration, fetch FetchFunc) *Poller {
	return &Poller{interval: interval, fetch: fetch}
}

// Run fetches on every interval tick until ctx is cancelled; the initial
// fetch is the caller's (views Refresh synchronously on their first render).
// A tick that fires while a fetch is still outstanding is skipped rather
// than stacking a concurrent request. Run returns once ctx is done; the
// ticker is always released.
func (p *Poller) Run(ctx context.Context) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			_ = p.Refresh(ctx)
		}
	}
}

// Refresh performs one fetch cycle out of band (eg. right after a mutation).
// It is a no-op returning nil when another fetch is already in flight.
func (p *Poller) Refresh(ctx context.Context) error {
	if !atomic.CompareAndSwapUint32(&p.inflight, 0, 1) {
		return nil
	}
	defer atomic.StoreUint32(&p.inflight, 0)

	seq := atomic.AddUint64(&p.seq, 1)
	return p.fetch(ctx, seq)
}

// Seq returns the sequence number of the last started cycle.
func (p *Poller) Seq() uint64 {
	return atomic.LoadUint64(&p.seq)
}
