package scheduler

import (
	"context"
	"log/slog"
	"runtime/debug"
	"sync"
	"sync/atomic"
	"time"

	"github.com/robfig/cron/v3"
)

const defaultQueueSize = 256

// Loop is the wall-clock Scheduler. Callbacks are queued and executed one
// at a time by Run.
type Loop struct {
	queue  chan func()
	cron   *cron.Cron
	logger *slog.Logger

	mu     sync.Mutex
	ctx    context.Context
	closed chan struct{}
	wg     sync.WaitGroup
}

// NewLoop creates a loop; nothing runs until Run is called
func NewLoop(logger *slog.Logger) *Loop {
	return &Loop{
		queue:  make(chan func(), defaultQueueSize),
		cron:   cron.New(),
		logger: logger,
		ctx:    context.Background(),
		closed: make(chan struct{}),
	}
}

// Run executes queued callbacks until ctx is done. Background work started
// by Go is cancelled and waited for before Run returns.
func (l *Loop) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	l.mu.Lock()
	l.ctx = ctx
	l.mu.Unlock()

	l.cron.Start()
	defer func() {
		<-l.cron.Stop().Done()
		close(l.closed)
		cancel()
		l.wg.Wait()
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case fn := <-l.queue:
			l.exec(fn)
		}
	}
}

func (l *Loop) exec(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			l.logger.Error("scheduled callback panicked",
				"panic", r,
				"stack", string(debug.Stack()),
			)
		}
	}()
	fn()
}

// Post queues fn to run on the loop. Posts after the loop stopped are dropped.
// Post must not be called from a callback running on the loop.
func (l *Loop) Post(fn func()) {
	select {
	case l.queue <- fn:
	case <-l.closed:
	}
}

// Now implements Scheduler
func (l *Loop) Now() time.Time {
	return time.Now()
}

// AfterFunc implements Scheduler
func (l *Loop) AfterFunc(d time.Duration, fn func()) Task {
	t := &loopTask{}
	t.timer = time.AfterFunc(d, func() {
		l.Post(func() {
			if t.stopped.Load() {
				return
			}
			fn()
		})
	})
	return t
}

// Every implements Scheduler. Periods are rounded down to whole seconds
// with a one second minimum.
func (l *Loop) Every(d time.Duration, fn func()) Task {
	t := &cronTask{cron: l.cron}
	t.id = l.cron.Schedule(cron.Every(d), cron.FuncJob(func() {
		l.Post(func() {
			if t.stopped.Load() {
				return
			}
			fn()
		})
	}))
	return t
}

// Go implements Scheduler
func (l *Loop) Go(work func(ctx context.Context), done func()) {
	l.mu.Lock()
	ctx := l.ctx
	l.mu.Unlock()

	l.wg.Add(1)
	go func() {
		defer l.wg.Done()
		work(ctx)
		if done != nil {
			l.Post(done)
		}
	}()
}

type loopTask struct {
	timer   *time.Timer
	stopped atomic.Bool
}

func (t *loopTask) Stop() bool {
	if t.stopped.Swap(true) {
		return false
	}
	t.timer.Stop()
	return true
}

type cronTask struct {
	cron    *cron.Cron
	id      cron.EntryID
	stopped atomic.Bool
}

func (t *cronTask) Stop() bool {
	if t.stopped.Swap(true) {
		return false
	}
	t.cron.Remove(t.id)
	return true
}
