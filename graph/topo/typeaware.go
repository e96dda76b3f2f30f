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

	"github.com/krotik/partgraph/graph/util"
	"github.com/krotik/partgraph/parallel"
)

/*
EdgeTypeAwareTopology extends a type sorted edge-shuffle view with a
dense per-(node, type) adjacency index.

For node n and type index t the edges of node n with that type occupy
[perTypeAdj[n*T + t-1], perTypeAdj[n*T + t]) with the node base as lower
bound for t == 0. Nodes without edges of a type produce an empty
half-open range.
*/
type EdgeTypeAwareTopology struct {
	EdgeShuffleTopology
	typeMap    *CondensedTypeMap // Dense edge type index of the graph
	perTypeAdj []uint64          // One-past-last offsets per (node, type)
}

/*
MakeEdgeTypeAwareTopology creates an edge-type-aware view from a type
sorted edge-shuffle view which is consumed by the call.
*/
func MakeEdgeTypeAwareTopology(src EdgeTypeSource, typeMap *CondensedTypeMap,
	etopo *EdgeShuffleTopology, workers *parallel.Workers) (*EdgeTypeAwareTopology, error) {

	if !etopo.HasEdgesSortedBy(EdgeSortByType) {
		return nil, &util.GraphError{Type: util.ErrInvalidArgument,
			Detail: "Edge-type-aware views require edges sorted by type"}
	}

	perTypeAdj, err := createPerTypeAdjacencyIndex(src, typeMap, etopo, workers)
	if err != nil {
		return nil, err
	}

	return &EdgeTypeAwareTopology{*etopo, typeMap, perTypeAdj}, nil
}

/*
createPerTypeAdjacencyIndex builds the dense 2-D offset table. Every
node's edges are walked in order; whenever the edge type advances past
the running type index the end offset of every skipped type is
recorded, trailing types are filled with the node's end offset.
*/
func createPerTypeAdjacencyIndex(src EdgeTypeSource, typeMap *CondensedTypeMap,
	etopo *EdgeShuffleTopology, workers *parallel.Workers) ([]uint64, error) {

	if etopo.Empty() {
		errorutil.AssertTrue(etopo.NumEdges() == 0,
			"Found graph with edges but no nodes")
		return nil, nil
	}

	numTypes := uint64(typeMap.NumUniqueTypes())

	if numTypes == 0 {
		errorutil.AssertTrue(etopo.NumEdges() == 0,
			"Found graph with edges but no edge types")
		return nil, nil
	}

	perTypeAdj := make([]uint64, etopo.NumNodes()*numTypes)

	err := workers.DoAll(etopo.NumNodes(), func(n uint64) {
		offset := n * numTypes
		index := uint32(0)

		r := etopo.OutEdges(Node(n))

		for e := r.Start; e < r.End; e++ {
			t := src.TypeOfEdgeFromPropertyIndex(etopo.EdgePropertyIndex(e))

			for t != typeMap.TypeOfIndex(index) {
				perTypeAdj[offset+uint64(index)] = uint64(e)
				index++
				errorutil.AssertTrue(uint64(index) < numTypes,
					"Edge type not present in condensed type map")
			}
		}

		for uint64(index) < numTypes {
			perTypeAdj[offset+uint64(index)] = uint64(r.End)
			index++
		}
	})
	if err != nil {
		return nil, wrapParallelError(err)
	}

	return perTypeAdj, nil
}

/*
TypeMap returns the condensed type map of this view.
*/
func (ta *EdgeTypeAwareTopology) TypeMap() *CondensedTypeMap {
	return ta.typeMap
}

/*
OutEdgesOfType returns the half-open range of a node's edges with the
given type index in constant time.
*/
func (ta *EdgeTypeAwareTopology) OutEdgesOfType(node Node, typeIndex uint32) EdgeRange {
	numTypes := uint64(ta.typeMap.NumUniqueTypes())

	errorutil.AssertTrue(uint64(typeIndex) < numTypes, "Type index out of range")

	offset := uint64(node) * numTypes

	start := ta.nodeBase(node)
	if typeIndex > 0 {
		start = Edge(ta.perTypeAdj[offset+uint64(typeIndex)-1])
	}

	return EdgeRange{start, Edge(ta.perTypeAdj[offset+uint64(typeIndex)])}
}

/*
makeEdgeTypeAwareFromDescriptor materializes an edge-type-aware view
from a persisted descriptor and its type sorted seed view. The persisted
type vector and dimensions must match the live state.
*/
func makeEdgeTypeAwareFromDescriptor(desc *Descriptor, typeMap *CondensedTypeMap,
	etopo *EdgeShuffleTopology, workers *parallel.Workers) (*EdgeTypeAwareTopology, error) {

	if !typeMap.SameTypes(desc.TypeIDs) {
		return nil, &util.GraphError{Type: util.ErrFormatMismatch,
			Detail: "Persisted edge type vector disagrees with the graph"}
	}

	numTypes := uint64(typeMap.NumUniqueTypes())

	if uint64(len(desc.AdjIndices)) != etopo.NumNodes()*numTypes ||
		uint64(len(desc.Dests)) != etopo.NumEdges() {

		return nil, &util.GraphError{Type: util.ErrFormatMismatch,
			Detail: "Persisted topology dimensions disagree with the graph"}
	}

	perTypeAdj := make([]uint64, len(desc.AdjIndices))

	if err := workers.Copy(perTypeAdj, desc.AdjIndices); err != nil {
		return nil, wrapParallelError(err)
	}

	return &EdgeTypeAwareTopology{*etopo, typeMap, perTypeAdj}, nil
}
