/*
 * PartGraph
 *
 * Copyright 2020 Matthias Ladkau. All rights reserved.
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

package topo

import (
	"github.com/krotik/common/errorutil"
	"github.com/krotik/common/sortutil"

	"github.com/krotik/partgraph/parallel"
)

/*
CondensedTypeMap is a bijection between the sparse set of edge type IDs
actually present in a graph and a dense index in [0, T). The dense order
follows the type IDs themselves so equal inputs yield equal maps
regardless of the worker count.
*/
type CondensedTypeMap struct {
	indexToType []EntityTypeID          // Dense index to sparse type ID
	typeToIndex map[EntityTypeID]uint32 // Sparse type ID to dense index
	valid       bool                    // Flag if this map may be served
}

/*
MakeCondensedEdgeTypeMap samples the types of all edges through
per-worker sets, merges them into a globally ordered set and assigns
dense indices in that order.
*/
func MakeCondensedEdgeTypeMap(numEdges uint64, typeOf func(edge Edge) EntityTypeID,
	workers *parallel.Workers) (*CondensedTypeMap, error) {

	pt := workers.NewPerThread(func(worker int) interface{} {
		return make(map[EntityTypeID]bool)
	})

	err := workers.DoAllWorker(numEdges, func(worker int, e uint64) {
		pt.Local(worker).(map[EntityTypeID]bool)[typeOf(Edge(e))] = true
	})
	if err != nil {
		return nil, wrapParallelError(err)
	}

	// Merge the per-worker sets and order by the underlying type ID

	merged := make(map[EntityTypeID]bool)

	for i := 0; i < pt.NumSlots(); i++ {
		for t := range pt.Local(i).(map[EntityTypeID]bool) {
			merged[t] = true
		}
	}

	ordered := make([]uint64, 0, len(merged))
	for t := range merged {
		ordered = append(ordered, uint64(t))
	}

	sortutil.UInt64s(ordered)

	ret := &CondensedTypeMap{make([]EntityTypeID, 0, len(ordered)),
		make(map[EntityTypeID]uint32), true}

	for i, t := range ordered {
		ret.indexToType = append(ret.indexToType, EntityTypeID(t))
		ret.typeToIndex[EntityTypeID(t)] = uint32(i)
	}

	return ret, nil
}

/*
NumUniqueTypes returns the number of distinct edge types in this map.
*/
func (tm *CondensedTypeMap) NumUniqueTypes() uint32 {
	return uint32(len(tm.indexToType))
}

/*
TypeOfIndex returns the sparse type ID of a dense index.
*/
func (tm *CondensedTypeMap) TypeOfIndex(index uint32) EntityTypeID {
	errorutil.AssertTrue(index < tm.NumUniqueTypes(), "Type index out of range")

	return tm.indexToType[index]
}

/*
IndexOfType returns the dense index of a sparse type ID.
*/
func (tm *CondensedTypeMap) IndexOfType(t EntityTypeID) (uint32, bool) {
	index, ok := tm.typeToIndex[t]
	return index, ok
}

/*
IndexToTypeMap returns a copy of the dense index to type ID vector.
*/
func (tm *CondensedTypeMap) IndexToTypeMap() []EntityTypeID {
	ret := make([]EntityTypeID, len(tm.indexToType))
	copy(ret, tm.indexToType)
	return ret
}

/*
SameTypes returns true if the given vector equals this map's dense index
to type ID vector. Used to validate persisted topologies.
*/
func (tm *CondensedTypeMap) SameTypes(ids []EntityTypeID) bool {
	if len(ids) != len(tm.indexToType) {
		return false
	}

	for i, t := range tm.indexToType {
		if ids[i] != t {
			return false
		}
	}

	return true
}

/*
IsValid returns true if this map may still be served from the cache.
*/
func (tm *CondensedTypeMap) IsValid() bool {
	return tm.valid
}

/*
Invalidate marks this map as stale.
*/
func (tm *CondensedTypeMap) Invalidate() {
	tm.valid = false
}
