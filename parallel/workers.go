/*
 * PartGraph
 *
 * Copyright 2020 Matthias Ladkau. All rights reserved.
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

/*
Package parallel contains the worker set and the data-parallel primitives
which are used to construct derived graph topologies.

Workers

A Workers object is a fixed set of workers. The calling thread acts as
worker 0 (the master) and participates in every parallel phase. All other
workers are persistent goroutines which are created once and released
through per-worker semaphores. Worker k releases workers 2k+1 and 2k+2
so a phase start cascades through the worker tree instead of being
broadcast by the master alone.

A phase runs a single function on all workers and suspends the master
until every worker has finished. Panics inside a phase are recovered and
reported as an error of the phase. There is no cancellation; a phase
always runs to completion.

Primitives

On top of the phase engine the package provides a data-parallel for-each
with chunked work stealing, a once-per-worker callback, per-worker
storage, a reduction accumulator and parallel fill, copy, iota and
prefix-sum operations over index arrays.
*/
package parallel

import (
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"
)

/*
Workers data structure
*/
type Workers struct {
	count    int             // Number of workers including the master
	release  []chan struct{} // Release semaphore for each worker
	done     *sync.WaitGroup // Workers which still run the current phase
	joined   *sync.WaitGroup // Worker goroutines which are still alive
	work     func(worker int) // Work function of the current phase
	shutdown bool            // Flag if the workers should terminate
	errLock  *sync.Mutex     // Lock for phase error recording
	phaseErr error           // First error of the current phase
}

/*
NewWorkers creates a new worker set with the given number of workers. A
count below 1 uses one worker per CPU. The function returns once all
workers are initialized and waiting for work.
*/
func NewWorkers(count int) *Workers {

	if count < 1 {
		count = runtime.NumCPU()
	}

	w := &Workers{count, make([]chan struct{}, count), &sync.WaitGroup{},
		&sync.WaitGroup{}, nil, false, &sync.Mutex{}, nil}

	for i := 0; i < count; i++ {
		w.release[i] = make(chan struct{}, 1)
	}

	// Thin start barrier - all workers must be waiting before the first
	// phase is dispatched

	started := &sync.WaitGroup{}
	started.Add(count - 1)
	w.joined.Add(count - 1)

	for i := 1; i < count; i++ {
		go w.workerLoop(i, started)
	}

	started.Wait()

	return w
}

/*
NumWorkers returns the number of workers including the master.
*/
func (w *Workers) NumWorkers() int {
	return w.count
}

/*
Close releases all worker goroutines and joins them. The worker set must
not be used afterwards.
*/
func (w *Workers) Close() {
	w.shutdown = true

	w.cascadeRelease(0)

	w.joined.Wait()
}

/*
workerLoop is the main loop of a single worker goroutine.
*/
func (w *Workers) workerLoop(worker int, started *sync.WaitGroup) {
	runtime.LockOSThread()

	defer w.joined.Done()

	started.Done()

	for {
		<-w.release[worker]

		// Wake up the children of this worker before doing any work

		w.cascadeRelease(worker)

		if w.shutdown {
			return
		}

		w.runSafe(worker, w.work)

		w.done.Done()
	}
}

/*
cascadeRelease releases the two child workers of the given worker.
*/
func (w *Workers) cascadeRelease(worker int) {
	if c := 2*worker + 1; c < w.count {
		w.release[c] <- struct{}{}
	}
	if c := 2*worker + 2; c < w.count {
		w.release[c] <- struct{}{}
	}
}

/*
runSafe runs the given function on a worker and records a panic as the
phase error.
*/
func (w *Workers) runSafe(worker int, f func(worker int)) {
	defer func() {
		if r := recover(); r != nil {
			w.errLock.Lock()
			if w.phaseErr == nil {
				w.phaseErr = fmt.Errorf("Worker %v failed: %v", worker, r)
			}
			w.errLock.Unlock()
		}
	}()

	f(worker)
}

/*
runPhase runs a single function on all workers. The call returns once
all workers have finished. Only the master may call this and only one
phase can run at a time.
*/
func (w *Workers) runPhase(f func(worker int)) error {
	w.phaseErr = nil
	w.work = f

	w.done.Add(w.count - 1)

	// The master owns the phase gate - release the tree and participate

	w.cascadeRelease(0)

	w.runSafe(0, f)

	w.done.Wait()

	return w.phaseErr
}

/*
OnEach runs the given function exactly once on every worker. The worker
index is passed to the function.
*/
func (w *Workers) OnEach(f func(worker int)) error {
	return w.runPhase(f)
}

/*
DoAll runs the given function for every index in [0, n). Indices are
handed out in chunks through a shared cursor so idle workers steal
remaining work.
*/
func (w *Workers) DoAll(n uint64, f func(i uint64)) error {
	return w.DoAllWorker(n, func(worker int, i uint64) { f(i) })
}

/*
DoAllWorker is DoAll with the worker index passed to the function.
*/
func (w *Workers) DoAllWorker(n uint64, f func(worker int, i uint64)) error {
	if n == 0 {
		return nil
	}

	chunk := n / uint64(w.count*4)
	if chunk == 0 {
		chunk = 1
	}

	var cursor uint64

	return w.runPhase(func(worker int) {
		for {
			end := atomic.AddUint64(&cursor, chunk)
			start := end - chunk

			if start >= n {
				return
			}
			if end > n {
				end = n
			}

			for i := start; i < end; i++ {
				f(worker, i)
			}
		}
	})
}

/*
Block returns the half-open index range of the given worker when n items
are split into contiguous per-worker blocks.
*/
func (w *Workers) Block(worker int, n uint64) (uint64, uint64) {
	c := uint64(w.count)
	return uint64(worker) * n / c, uint64(worker+1) * n / c
}
