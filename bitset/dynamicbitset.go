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
Package bitset contains a bit-vector of fixed size whose bulk operations
run on a parallel worker set.

Bitwise operations across two bitsets require non-overlapping element
ranges per worker and are safe without locking. Setting single bits
concurrently is safe through atomic updates.
*/
package bitset

import (
	"math/bits"
	"sync/atomic"

	"github.com/krotik/common/errorutil"

	"github.com/krotik/partgraph/parallel"
)

/*
wordBits is the number of bits per storage word.
*/
const wordBits = 64

/*
DynamicBitset data structure
*/
type DynamicBitset struct {
	size    uint64             // Number of usable bits
	words   []uint64           // Bit storage
	workers *parallel.Workers  // Worker set for bulk operations
}

/*
NewDynamicBitset creates a new bitset of the given fixed size. All bits
are initially unset.
*/
func NewDynamicBitset(size uint64, workers *parallel.Workers) *DynamicBitset {
	return &DynamicBitset{size, make([]uint64, (size+wordBits-1)/wordBits), workers}
}

/*
Size returns the number of bits of this bitset.
*/
func (b *DynamicBitset) Size() uint64 {
	return b.size
}

/*
Set sets the bit at the given index. Concurrent callers may set distinct
or identical bits.
*/
func (b *DynamicBitset) Set(index uint64) {
	errorutil.AssertTrue(index < b.size, "Bit index out of range")

	word := &b.words[index/wordBits]
	mask := uint64(1) << (index % wordBits)

	for {
		old := atomic.LoadUint64(word)
		if old&mask != 0 || atomic.CompareAndSwapUint64(word, old, old|mask) {
			return
		}
	}
}

/*
Test returns true if the bit at the given index is set.
*/
func (b *DynamicBitset) Test(index uint64) bool {
	errorutil.AssertTrue(index < b.size, "Bit index out of range")

	return atomic.LoadUint64(&b.words[index/wordBits])&(1<<(index%wordBits)) != 0
}

/*
Reset unsets all bits.
*/
func (b *DynamicBitset) Reset() error {
	return b.workers.Fill(b.words, 0)
}

/*
Or sets this bitset to the bitwise or of itself and other.
*/
func (b *DynamicBitset) Or(other *DynamicBitset) error {
	errorutil.AssertTrue(b.size == other.size, "Bitset size mismatch")

	return b.workers.DoAll(uint64(len(b.words)), func(i uint64) {
		b.words[i] |= other.words[i]
	})
}

/*
And sets this bitset to the bitwise and of itself and other.
*/
func (b *DynamicBitset) And(other *DynamicBitset) error {
	errorutil.AssertTrue(b.size == other.size, "Bitset size mismatch")

	return b.workers.DoAll(uint64(len(b.words)), func(i uint64) {
		b.words[i] &= other.words[i]
	})
}

/*
Xor sets this bitset to the bitwise xor of itself and other.
*/
func (b *DynamicBitset) Xor(other *DynamicBitset) error {
	errorutil.AssertTrue(b.size == other.size, "Bitset size mismatch")

	return b.workers.DoAll(uint64(len(b.words)), func(i uint64) {
		b.words[i] ^= other.words[i]
	})
}

/*
OrOf sets this bitset to the bitwise or of two operands without
allocating temporaries.
*/
func (b *DynamicBitset) OrOf(other1 *DynamicBitset, other2 *DynamicBitset) error {
	errorutil.AssertTrue(b.size == other1.size && b.size == other2.size,
		"Bitset size mismatch")

	return b.workers.DoAll(uint64(len(b.words)), func(i uint64) {
		b.words[i] = other1.words[i] | other2.words[i]
	})
}

/*
AndOf sets this bitset to the bitwise and of two operands without
allocating temporaries.
*/
func (b *DynamicBitset) AndOf(other1 *DynamicBitset, other2 *DynamicBitset) error {
	errorutil.AssertTrue(b.size == other1.size && b.size == other2.size,
		"Bitset size mismatch")

	return b.workers.DoAll(uint64(len(b.words)), func(i uint64) {
		b.words[i] = other1.words[i] & other2.words[i]
	})
}

/*
XorOf sets this bitset to the bitwise xor of two operands without
allocating temporaries.
*/
func (b *DynamicBitset) XorOf(other1 *DynamicBitset, other2 *DynamicBitset) error {
	errorutil.AssertTrue(b.size == other1.size && b.size == other2.size,
		"Bitset size mismatch")

	return b.workers.DoAll(uint64(len(b.words)), func(i uint64) {
		b.words[i] = other1.words[i] ^ other2.words[i]
	})
}

/*
Not inverts all bits. Unused bits of the last storage word stay unset.
*/
func (b *DynamicBitset) Not() error {
	err := b.workers.DoAll(uint64(len(b.words)), func(i uint64) {
		b.words[i] = ^b.words[i]
	})

	if err == nil && b.size%wordBits != 0 {
		b.words[len(b.words)-1] &= (1 << (b.size % wordBits)) - 1
	}

	return err
}

/*
Count returns the number of set bits as a popcount reduction.
*/
func (b *DynamicBitset) Count() (uint64, error) {
	acc := b.workers.NewAccumulator()

	err := b.workers.DoAllWorker(uint64(len(b.words)), func(worker int, i uint64) {
		acc.Add(worker, uint64(bits.OnesCount64(b.words[i])))
	})

	return acc.Reduce(), err
}

/*
Offsets returns the sorted indices of all set bits. Each worker first
counts the set bits of its word block, a prefix sum over the counters
yields the per-worker write positions and a second scan writes the
indices.
*/
func (b *DynamicBitset) Offsets() ([]uint64, error) {
	numWorkers := b.workers.NumWorkers()
	numWords := uint64(len(b.words))

	counts := make([]uint64, numWorkers)

	err := b.workers.OnEach(func(worker int) {
		start, end := b.workers.Block(worker, numWords)

		var c uint64
		for i := start; i < end; i++ {
			c += uint64(bits.OnesCount64(b.words[i]))
		}

		counts[worker] = c
	})

	if err != nil {
		return nil, err
	}

	if err = b.workers.PrefixSum(counts); err != nil {
		return nil, err
	}

	ret := make([]uint64, counts[numWorkers-1])

	err = b.workers.OnEach(func(worker int) {
		start, end := b.workers.Block(worker, numWords)

		pos := uint64(0)
		if worker > 0 {
			pos = counts[worker-1]
		}

		for i := start; i < end; i++ {
			word := b.words[i]
			for word != 0 {
				bit := uint64(bits.TrailingZeros64(word))
				ret[pos] = i*wordBits + bit
				pos++
				word &= word - 1
			}
		}
	})

	return ret, err
}
