/*
 * PartGraph
 *
 * Copyright 2020 Matthias Ladkau. All rights reserved.
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

package parallel

import (
	"sync/atomic"
	"testing"
)

func TestDoAll(t *testing.T) {
	w := NewWorkers(4)
	defer w.Close()

	if w.NumWorkers() != 4 {
		t.Error("Unexpected worker count:", w.NumWorkers())
		return
	}

	arr := make([]uint64, 1000)

	if err := w.DoAll(uint64(len(arr)), func(i uint64) {
		arr[i] = i * 2
	}); err != nil {
		t.Error(err)
		return
	}

	for i, v := range arr {
		if v != uint64(i)*2 {
			t.Error("Unexpected value at", i, ":", v)
			return
		}
	}

	// An empty range should not run anything

	var counter uint64

	if err := w.DoAll(0, func(i uint64) {
		atomic.AddUint64(&counter, 1)
	}); err != nil {
		t.Error(err)
		return
	}

	if counter != 0 {
		t.Error("Unexpected counter value:", counter)
		return
	}
}

func TestDoAllWorkerAndPerThread(t *testing.T) {
	w := NewWorkers(3)
	defer w.Close()

	pt := w.NewPerThread(func(worker int) interface{} {
		return make(map[uint64]bool)
	})

	if pt.NumSlots() != 3 {
		t.Error("Unexpected slot count:", pt.NumSlots())
		return
	}

	if err := w.DoAllWorker(500, func(worker int, i uint64) {
		pt.Local(worker).(map[uint64]bool)[i] = true
	}); err != nil {
		t.Error(err)
		return
	}

	// Each index must have been visited exactly once over all slots

	seen := make(map[uint64]bool)

	for s := 0; s < pt.NumSlots(); s++ {
		for i := range pt.Local(s).(map[uint64]bool) {
			if seen[i] {
				t.Error("Index visited twice:", i)
				return
			}
			seen[i] = true
		}
	}

	if len(seen) != 500 {
		t.Error("Unexpected number of visited indices:", len(seen))
		return
	}
}

func TestOnEach(t *testing.T) {
	w := NewWorkers(5)
	defer w.Close()

	visited := make([]uint64, 5)

	if err := w.OnEach(func(worker int) {
		atomic.AddUint64(&visited[worker], 1)
	}); err != nil {
		t.Error(err)
		return
	}

	for i, v := range visited {
		if v != 1 {
			t.Error("Worker", i, "was visited", v, "times")
			return
		}
	}
}

func TestAccumulator(t *testing.T) {
	w := NewWorkers(4)
	defer w.Close()

	acc := w.NewAccumulator()

	if err := w.DoAllWorker(100, func(worker int, i uint64) {
		acc.Add(worker, i)
	}); err != nil {
		t.Error(err)
		return
	}

	if res := acc.Reduce(); res != 4950 {
		t.Error("Unexpected reduction result:", res)
		return
	}
}

func TestFillIotaCopy(t *testing.T) {
	w := NewWorkers(2)
	defer w.Close()

	arr := make([]uint64, 100)

	if err := w.Fill(arr, 7); err != nil {
		t.Error(err)
		return
	}

	for _, v := range arr {
		if v != 7 {
			t.Error("Unexpected fill value:", v)
			return
		}
	}

	if err := w.Iota(arr, 5); err != nil {
		t.Error(err)
		return
	}

	for i, v := range arr {
		if v != uint64(i)+5 {
			t.Error("Unexpected iota value at", i, ":", v)
			return
		}
	}

	dst := make([]uint64, 100)

	if err := w.Copy(dst, arr); err != nil {
		t.Error(err)
		return
	}

	for i, v := range dst {
		if v != arr[i] {
			t.Error("Unexpected copy value at", i, ":", v)
			return
		}
	}
}

func TestPrefixSum(t *testing.T) {
	w := NewWorkers(4)
	defer w.Close()

	arr := []uint64{2, 0, 1, 2}

	if err := w.PrefixSum(arr); err != nil {
		t.Error(err)
		return
	}

	expected := []uint64{2, 2, 3, 5}

	for i, v := range arr {
		if v != expected[i] {
			t.Error("Unexpected prefix sum:", arr)
			return
		}
	}

	// A prefix sum over more items than workers

	large := make([]uint64, 1000)
	for i := range large {
		large[i] = 1
	}

	if err := w.PrefixSum(large); err != nil {
		t.Error(err)
		return
	}

	for i, v := range large {
		if v != uint64(i)+1 {
			t.Error("Unexpected prefix sum at", i, ":", v)
			return
		}
	}

	if err := w.PrefixSum(nil); err != nil {
		t.Error(err)
		return
	}
}

func TestPhaseError(t *testing.T) {
	w := NewWorkers(2)
	defer w.Close()

	err := w.DoAll(10, func(i uint64) {
		if i == 5 {
			panic("testerror")
		}
	})

	if err == nil {
		t.Error("Expected an error from a panicking phase")
		return
	}

	// The worker set must still be usable after a failed phase

	if err := w.DoAll(10, func(i uint64) {}); err != nil {
		t.Error(err)
		return
	}
}

func TestSingleWorker(t *testing.T) {
	w := NewWorkers(1)
	defer w.Close()

	arr := make([]uint64, 10)

	if err := w.Iota(arr, 0); err != nil {
		t.Error(err)
		return
	}

	if arr[9] != 9 {
		t.Error("Unexpected iota result:", arr)
		return
	}
}
