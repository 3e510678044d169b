package echoportal

import (
	"context"
	"sync"
	"time"

	"github.com/trezcool/ripoti/core"
	"github.com/trezcool/ripoti/core/poll"
	"github.com/trezcool/ripoti/core/report"
	"github.com/trezcool/ripoti/core/user"
	"github.com/trezcool/ripoti/services/reportapi"
)

// watcher owns the background pollers of one signed-in session and the stores
// they feed. Pages render from the stores; the pollers keep them fresh.
//
// Which feeds run depends on the role:
//   - admin:   all reports + dashboard stats
//   - teacher: all reports (moderation) + teacher-scoped reports (dashboard)
//   - student: none; the student dashboard fetches on request
type watcher struct {
	reports     *report.Store
	reportsPoll *poll.Poller

	feed     *report.Store // teacher-scoped dashboard feed
	feedPoll *poll.Poller

	stats     *report.StatsStore
	statsPoll *poll.Poller

	cancel context.CancelFunc
}

type watcherRegistry struct {
	client   *reportapi.Client
	logger   core.Logger
	interval time.Duration
	ttl      time.Duration

	ctx    context.Context
	cancel context.CancelFunc

	mu sync.Mutex
	m  map[string]*watcher // keyed by session token
}

func newWatcherRegistry(client *reportapi.Client, logger core.Logger, interval, ttl time.Duration) *watcherRegistry {
	ctx, cancel := context.WithCancel(context.Background())
	return &watcherRegistry{
		client:   client,
		logger:   logger,
		interval: interval,
		ttl:      ttl,
		ctx:      ctx,
		cancel:   cancel,
		m:        make(map[string]*watcher),
	}
}

// ensure returns the session's watcher, starting one if needed. Starting
// lazily (rather than only at login) lets sessions survive a portal restart:
// the first page view after the restart re-establishes the pollers.
func (wr *watcherRegistry) ensure(sess user.Session) *watcher {
	wr.mu.Lock()
	defer wr.mu.Unlock()

	if w, ok := wr.m[sess.Token]; ok {
		return w
	}

	// The TTL bounds the watcher's lifetime even if logout never comes.
	ctx, cancel := context.WithTimeout(wr.ctx, wr.ttl)
	w := &watcher{
		reports: report.NewStore(),
		cancel:  cancel,
	}

	switch sess.Role {
	case user.RoleAdmin:
		w.stats = report.NewStatsStore()
		w.reportsPoll = poll.New(wr.interval, wr.reportsFetch(sess, w.reports))
		w.statsPoll = poll.New(wr.interval, wr.statsFetch(sess, w.stats))
		go w.reportsPoll.Run(ctx)
		go w.statsPoll.Run(ctx)
	case user.RoleTeacher:
		w.feed = report.NewStore()
		w.reportsPoll = poll.New(wr.interval, wr.reportsFetch(sess, w.reports))
		w.feedPoll = poll.New(wr.interval, wr.teacherFetch(sess, w.feed))
		go w.reportsPoll.Run(ctx)
		go w.feedPoll.Run(ctx)
	}

	go func() {
		<-ctx.Done()
		wr.drop(sess.Token)
	}()

	wr.m[sess.Token] = w
	return w
}

func (wr *watcherRegistry) reportsFetch(sess user.Session, store *report.Store) poll.FetchFunc {
	return func(ctx context.Context, seq uint64) error {
		reports, err := wr.client.Reports(ctx, sess)
		if err != nil {
			wr.logger.Warn("polling reports failed", err, sess)
			return err
		}
		store.Replace(seq, reports)
		return nil
	}
}

func (wr *watcherRegistry) teacherFetch(sess user.Session, store *report.Store) poll.FetchFunc {
	return func(ctx context.Context, seq uint64) error {
		reports, err := wr.client.TeacherReports(ctx, sess)
		if err != nil {
			wr.logger.Warn("polling teacher reports failed", err, sess)
			return err
		}
		store.Replace(seq, reports)
		return nil
	}
}

func (wr *watcherRegistry) statsFetch(sess user.Session, store *report.StatsStore) poll.FetchFunc {
	return func(ctx context.Context, seq uint64) error {
		stats, err := wr.client.Stats(ctx, sess)
		if err != nil {
			wr.logger.Warn("polling dashboard stats failed", err, sess)
			return err
		}
		store.Replace(seq, stats)
		return nil
	}
}

func (wr *watcherRegistry) drop(token string) {
	wr.mu.Lock()
	defer wr.mu.Unlock()
	if w, ok := wr.m[token]; ok {
		w.cancel()
		delete(wr.m, token)
	}
}

// stop tears down a session's pollers; called on logout.
func (wr *watcherRegistry) stop(token string) { wr.drop(token) }

// Close cancels every running watcher; part of server shutdown.
func (wr *watcherRegistry) Close() {
	wr.cancel()
	wr.mu.Lock()
	defer wr.mu.Unlock()
	wr.m = make(map[string]*watcher)
}
