/*
 * PartGraph
 *
 * Copyright 2020 Matthias Ladkau. All rights reserved.
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

package bitset

import (
	"testing"

	"github.com/krotik/partgraph/parallel"
)

func TestSetTestCount(t *testing.T) {
	w := parallel.NewWorkers(4)
	defer w.Close()

	b := NewDynamicBitset(200, w)

	if b.Size() != 200 {
		t.Error("Unexpected bitset size:", b.Size())
		return
	}

	for _, i := range []uint64{0, 63, 64, 127, 199} {
		b.Set(i)
	}

	if !b.Test(63) || !b.Test(64) || b.Test(65) {
		t.Error("Unexpected bit values")
		return
	}

	count, err := b.Count()
	if err != nil {
		t.Error(err)
		return
	}

	if count != 5 {
		t.Error("Unexpected count:", count)
		return
	}

	if err := b.Reset(); err != nil {
		t.Error(err)
		return
	}

	count, _ = b.Count()
	if count != 0 {
		t.Error("Unexpected count after reset:", count)
		return
	}
}

func TestBitwiseOps(t *testing.T) {
	w := parallel.NewWorkers(2)
	defer w.Close()

	a := NewDynamicBitset(130, w)
	b := NewDynamicBitset(130, w)

	a.Set(1)
	a.Set(70)
	b.Set(70)
	b.Set(129)

	// Two-operand combinators write into the destination

	dst := NewDynamicBitset(130, w)

	if err := dst.OrOf(a, b); err != nil {
		t.Error(err)
		return
	}

	if !dst.Test(1) || !dst.Test(70) || !dst.Test(129) {
		t.Error("Unexpected or result")
		return
	}

	if err := dst.AndOf(a, b); err != nil {
		t.Error(err)
		return
	}

	if dst.Test(1) || !dst.Test(70) || dst.Test(129) {
		t.Error("Unexpected and result")
		return
	}

	if err := dst.XorOf(a, b); err != nil {
		t.Error(err)
		return
	}

	if !dst.Test(1) || dst.Test(70) || !dst.Test(129) {
		t.Error("Unexpected xor result")
		return
	}

	// In-place operations

	if err := a.Or(b); err != nil {
		t.Error(err)
		return
	}

	count, _ := a.Count()
	if count != 3 {
		t.Error("Unexpected count after or:", count)
		return
	}

	if err := a.Xor(b); err != nil {
		t.Error(err)
		return
	}

	if !a.Test(1) || a.Test(70) || a.Test(129) {
		t.Error("Unexpected xor result")
		return
	}

	if err := a.And(b); err != nil {
		t.Error(err)
		return
	}

	count, _ = a.Count()
	if count != 0 {
		t.Error("Unexpected count after and:", count)
		return
	}
}

func TestNot(t *testing.T) {
	w := parallel.NewWorkers(2)
	defer w.Close()

	b := NewDynamicBitset(70, w)
	b.Set(3)

	if err := b.Not(); err != nil {
		t.Error(err)
		return
	}

	count, _ := b.Count()
	if count != 69 {
		t.Error("Unexpected count after not:", count)
		return
	}

	if b.Test(3) || !b.Test(69) {
		t.Error("Unexpected bit values after not")
		return
	}
}

func TestOffsets(t *testing.T) {
	w := parallel.NewWorkers(4)
	defer w.Close()

	a := NewDynamicBitset(1000, w)
	b := NewDynamicBitset(1000, w)

	aBits := []uint64{0, 5, 64, 100, 555, 999}
	bBits := []uint64{5, 80, 555, 600}

	for _, i := range aBits {
		a.Set(i)
	}
	for _, i := range bBits {
		b.Set(i)
	}

	offsets, err := a.Offsets()
	if err != nil {
		t.Error(err)
		return
	}

	// Offsets must be in strictly ascending order and their number
	// must equal the popcount

	count, _ := a.Count()
	if uint64(len(offsets)) != count {
		t.Error("Offset count disagrees with popcount:", len(offsets), count)
		return
	}

	for i, v := range offsets {
		if v != aBits[i] {
			t.Error("Unexpected offsets:", offsets)
			return
		}
	}

	// The offsets of a union are the sorted union of the offsets

	union := NewDynamicBitset(1000, w)

	if err := union.OrOf(a, b); err != nil {
		t.Error(err)
		return
	}

	unionOffsets, err := union.Offsets()
	if err != nil {
		t.Error(err)
		return
	}

	expected := []uint64{0, 5, 64, 80, 100, 555, 600, 999}

	if len(unionOffsets) != len(expected) {
		t.Error("Unexpected union offsets:", unionOffsets)
		return
	}

	for i, v := range unionOffsets {
		if v != expected[i] {
			t.Error("Unexpected union offsets:", unionOffsets)
			return
		}
	}
}
