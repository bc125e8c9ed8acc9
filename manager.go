package gohalo

import (
	"golang.org/x/sync/errgroup"
)

// splitter divides the particles of one large group between workers.
type splitter struct {
	workers int
}

// width is the number of chunks that n particles are split into.
func (sp *splitter) width(n int) int {
	w := sp.workers
	if w > n {
		w = n
	}
	if w < 1 {
		w = 1
	}
	return w
}

// run calls f once on each of width(n) disjoint chunks of [0, n) and
// returns once every call has finished.
func (sp *splitter) run(n int, f func(id, start, end int)) {
	workers := sp.width(n)
	if workers == 1 {
		f(0, 0, n)
		return
	}

	out := make(chan int, workers)
	for id := 0; id < workers-1; id++ {
		go chanRun(id, workers, n, f, out)
	}
	chanRun(workers-1, workers, n, f, out)

	for i := 0; i < workers; i++ {
		<-out
	}
}

func chanRun(id, workers, n int, f func(id, start, end int), out chan<- int) {
	f(id, id*n/workers, (id+1)*n/workers)
	out <- id
}

// reduce evaluates f over the chunks of [0, n) and combines the partial
// results in chunk order, so the answer does not depend on scheduling.
func reduce[T any](
	sp *splitter, n int, f func(start, end int) T, add func(a, b T) T,
) T {
	parts := make([]T, sp.width(n))
	sp.run(n, func(id, start, end int) { parts[id] = f(start, end) })
	acc := parts[0]
	for _, p := range parts[1:] {
		acc = add(acc, p)
	}
	return acc
}

// groupTask is everything a worker may touch while processing one group.
type groupTask struct {
	g   int
	ps  []Particle
	rec *PropertyRecord
	opt *Options
	ws  *workspace
	sp  *splitter
}

// forEachGroup calls fn on every group. Groups with at least
// ParallelThreshold particles are run one at a time with their particles
// split across every worker. The remaining groups are run concurrently, one
// group per worker. records may be nil.
func forEachGroup(
	ps []Particle, gr *Groups, records []PropertyRecord, opt *Options,
	fn func(t *groupTask) error,
) error {
	workers := opt.Workers
	p := newPool(workers)
	wide, serial := &splitter{workers}, &splitter{1}

	task := func(g int, ws *workspace, sp *splitter) *groupTask {
		ws.grow(gr.NumInGroup[g])
		t := &groupTask{g: g, ps: gr.Slice(ps, g), opt: opt, ws: ws, sp: sp}
		if records != nil {
			t.rec = &records[g]
		}
		return t
	}

	for g := 1; g <= gr.NGroup(); g++ {
		n := gr.NumInGroup[g]
		if n < opt.ParallelThreshold {
			continue
		}
		ws := p.get()
		err := fn(task(g, ws, wide))
		p.put(ws)
		if err != nil {
			return err
		}
		opt.Metrics.Group("particle", n)
	}

	eg := &errgroup.Group{}
	eg.SetLimit(workers)
	for g := 1; g <= gr.NGroup(); g++ {
		n := gr.NumInGroup[g]
		if n >= opt.ParallelThreshold {
			continue
		}
		eg.Go(func() error {
			ws := p.get()
			defer p.put(ws)
			if err := fn(task(g, ws, serial)); err != nil {
				return err
			}
			opt.Metrics.Group("group", n)
			return nil
		})
	}
	return eg.Wait()
}

// forEachIndex calls fn on every index in [start, end) with at most workers
// calls running at once.
func forEachIndex(start, end, workers int, fn func(i int) error) error {
	eg := &errgroup.Group{}
	eg.SetLimit(workers)
	for i := start; i < end; i++ {
		eg.Go(func() error { return fn(i) })
	}
	return eg.Wait()
}
