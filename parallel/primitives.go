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

/*
PerThread holds one storage slot per worker.
*/
type PerThread struct {
	slots []interface{}
}

/*
NewPerThread creates per-worker storage. The init function is called once
for every worker slot.
*/
func (w *Workers) NewPerThread(init func(worker int) interface{}) *PerThread {
	pt := &PerThread{make([]interface{}, w.count)}

	for i := 0; i < w.count; i++ {
		pt.slots[i] = init(i)
	}

	return pt
}

/*
Local returns the storage slot of the given worker.
*/
func (pt *PerThread) Local(worker int) interface{} {
	return pt.slots[worker]
}

/*
NumSlots returns the number of storage slots.
*/
func (pt *PerThread) NumSlots() int {
	return len(pt.slots)
}

/*
Accumulator is a reduction accumulator with one summand per worker.
*/
type Accumulator struct {
	slots []uint64
}

/*
NewAccumulator creates a new reduction accumulator for this worker set.
*/
func (w *Workers) NewAccumulator() *Accumulator {
	return &Accumulator{make([]uint64, w.count)}
}

/*
Add adds a value to the summand of the given worker.
*/
func (a *Accumulator) Add(worker int, v uint64) {
	a.slots[worker] += v
}

/*
Reduce returns the sum over all worker summands.
*/
func (a *Accumulator) Reduce() uint64 {
	var ret uint64

	for _, v := range a.slots {
		ret += v
	}

	return ret
}

/*
Fill sets every element of the given array to a value.
*/
func (w *Workers) Fill(arr []uint64, v uint64) error {
	return w.DoAll(uint64(len(arr)), func(i uint64) {
		arr[i] = v
	})
}

/*
Iota fills the given array with consecutive values beginning at start.
*/
func (w *Workers) Iota(arr []uint64, start uint64) error {
	return w.DoAll(uint64(len(arr)), func(i uint64) {
		arr[i] = start + i
	})
}

/*
Copy copies src into dst. Both arrays must have the same length.
*/
func (w *Workers) Copy(dst []uint64, src []uint64) error {
	return w.DoAll(uint64(len(src)), func(i uint64) {
		dst[i] = src[i]
	})
}

/*
PrefixSum turns the given array into its inclusive prefix sum. The array
is split into per-worker blocks; each block is summed in place, the block
totals are scanned serially and the offsets are then applied in a second
parallel pass.
*/
func (w *Workers) PrefixSum(arr []uint64) error {
	n := uint64(len(arr))

	if n == 0 {
		return nil
	}

	totals := make([]uint64, w.count)

	err := w.OnEach(func(worker int) {
		start, end := w.Block(worker, n)

		var sum uint64
		for i := start; i < end; i++ {
			sum += arr[i]
			arr[i] = sum
		}

		totals[worker] = sum
	})

	if err != nil {
		return err
	}

	// Serial scan of the block totals into block offsets

	var offset uint64
	for i := 0; i < w.count; i++ {
		t := totals[i]
		totals[i] = offset
		offset += t
	}

	return w.OnEach(func(worker int) {
		start, end := w.Block(worker, n)

		for i := start; i < end; i++ {
			arr[i] += totals[worker]
		}
	})
}
