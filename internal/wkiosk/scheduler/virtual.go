package scheduler

import (
	"container/heap"
	"context"
	"time"
)

// Virtual is a Scheduler driven by a simulated clock. Time only moves when
// Advance is called, which makes timing behaviour deterministic in tests.
// It is not safe for concurrent use.
type Virtual struct {
	now   time.Time
	seq   uint64
	tasks taskHeap
}

// NewVirtual creates a virtual scheduler starting at start
func NewVirtual(start time.Time) *Virtual {
	return &Virtual{now: start}
}

// Now implements Scheduler
func (v *Virtual) Now() time.Time {
	return v.now
}

// AfterFunc implements Scheduler
func (v *Virtual) AfterFunc(d time.Duration, fn func()) Task {
	return v.schedule(d, 0, fn)
}

// Every implements Scheduler
func (v *Virtual) Every(d time.Duration, fn func()) Task {
	if d <= 0 {
		d = time.Second
	}
	return v.schedule(d, d, fn)
}

// Go implements Scheduler by running work and done inline
func (v *Virtual) Go(work func(ctx context.Context), done func()) {
	work(context.Background())
	if done != nil {
		done()
	}
}

// Advance moves the clock forward by d, running every callback that falls
// due in timestamp order.
func (v *Virtual) Advance(d time.Duration) {
	end := v.now.Add(d)
	for len(v.tasks) > 0 && !v.tasks[0].at.After(end) {
		t := heap.Pop(&v.tasks).(*virtualTask)
		v.now = t.at
		if t.period > 0 {
			t.at = t.at.Add(t.period)
			v.seq++
			t.seq = v.seq
			heap.Push(&v.tasks, t)
		}
		t.fn()
	}
	v.now = end
}

// Pending returns the number of live tasks, periodic ones included
func (v *Virtual) Pending() int {
	return len(v.tasks)
}

// PendingOnce returns the number of live one-shot tasks
func (v *Virtual) PendingOnce() int {
	n := 0
	for _, t := range v.tasks {
		if t.period == 0 {
			n++
		}
	}
	return n
}

// NextAt returns when the earliest live task fires
func (v *Virtual) NextAt() (time.Time, bool) {
	if len(v.tasks) == 0 {
		return time.Time{}, false
	}
	return v.tasks[0].at, true
}

func (v *Virtual) schedule(d, period time.Duration, fn func()) *virtualTask {
	if d < 0 {
		d = 0
	}
	v.seq++
	t := &virtualTask{
		v:      v,
		at:     v.now.Add(d),
		seq:    v.seq,
		period: period,
		fn:     fn,
		index:  -1,
	}
	heap.Push(&v.tasks, t)
	return t
}

type virtualTask struct {
	v      *Virtual
	at     time.Time
	seq    uint64
	period time.Duration
	fn     func()
	index  int
}

func (t *virtualTask) Stop() bool {
	if t.index < 0 {
		return false
	}
	heap.Remove(&t.v.tasks, t.index)
	return true
}

type taskHeap []*virtualTask

func (h taskHeap) Len() int { return len(h) }

func (h taskHeap) Less(i, j int) bool {
	if h[i].at.Equal(h[j].at) {
		return h[i].seq < h[j].seq
	}
	return h[i].at.Before(h[j].at)
}

func (h taskHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].index = i
	h[j].index = j
}

func (h *taskHeap) Push(x any) {
	t := x.(*virtualTask)
	t.index = len(*h)
	*h = append(*h, t)
}

func (h *taskHeap) Pop() any {
	old := *h
	n := len(old)
	t := old[n-1]
	old[n-1] = nil
	t.index = -1
	*h = old[:n-1]
	return t
}
