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
	"sort"
	"sync"
	"sync/atomic"

	"github.com/krotik/common/logutil"

	"github.com/krotik/partgraph/graph/util"
	"github.com/krotik/partgraph/parallel"
)

/*
binarySearchThreshold is the out degree above which FindEdge switches
from a linear scan to a binary search on destination sorted edges.
*/
const binarySearchThreshold = 64

/*
Logger for the topo package
*/
var topoLogger = logutil.GetLogger("partgraph.graph.topo")

/*
Warn only once about unsorted FindEdge calls
*/
var findEdgeWarnOnce sync.Once

/*
EdgeShuffleTopology is a topology view whose edges have been reordered
and optionally reversed. Edge property indices map the reordered edges
back to the original property table rows.
*/
type EdgeShuffleTopology struct {
	Topology
	valid bool // Flag if this view may be returned from the cache
}

/*
newEdgeShuffleTopology creates a new edge-shuffle view taking ownership
of the given arrays.
*/
func newEdgeShuffleTopology(tpose TransposeState, esort EdgeSortState,
	adjIndices []uint64, dests []Node, edgePropIndices []PropertyIndex,
	nodePropIndices []PropertyIndex) *EdgeShuffleTopology {

	return &EdgeShuffleTopology{Topology{adjIndices, dests, edgePropIndices,
		nodePropIndices, tpose, esort, NodeSortAny}, true}
}

/*
IsValid returns true if this view may still be served from the cache.
*/
func (et *EdgeShuffleTopology) IsValid() bool {
	return et.valid
}

/*
Invalidate marks this view as stale so the cache no longer serves it.
*/
func (et *EdgeShuffleTopology) Invalidate() {
	et.valid = false
}

/*
wrapParallelError converts a failure of the parallel primitives into a
resource exhaustion error. Partial construction state is discarded by
the caller.
*/
func wrapParallelError(err error) error {
	if err == nil {
		return nil
	}

	return &util.GraphError{Type: util.ErrResourceExhausted, Detail: err.Error()}
}

/*
MakeOriginalEdgeShuffle creates an edge-shuffle view which preserves the
edge order of the given base topology. Missing edge property indices are
filled with the identity permutation.
*/
func MakeOriginalEdgeShuffle(base *Topology, workers *parallel.Workers) (*EdgeShuffleTopology, error) {
	copyTopo, err := CopyTopology(base, workers)
	if err != nil {
		return nil, wrapParallelError(err)
	}

	edgePropIndices := copyTopo.edgePropIndices

	if edgePropIndices == nil {
		edgePropIndices = make([]PropertyIndex, copyTopo.NumEdges())

		err = workers.DoAll(copyTopo.NumEdges(), func(i uint64) {
			edgePropIndices[i] = PropertyIndex(i)
		})
		if err != nil {
			return nil, wrapParallelError(err)
		}
	}

	return newEdgeShuffleTopology(TransposeNone, EdgeSortAny,
		copyTopo.adjIndices, copyTopo.dests, edgePropIndices,
		copyTopo.nodePropIndices), nil
}

/*
MakeTransposeEdgeShuffle creates an edge-shuffle view with all edges of
the given base topology reversed. The view's (i, dst) means an edge from
dst to i in the base. Edge order inside a destination block is
unspecified until a subsequent sort.
*/
func MakeTransposeEdgeShuffle(base *Topology, workers *parallel.Workers) (*EdgeShuffleTopology, error) {

	if base.Empty() {
		et := newEdgeShuffleTopology(TransposeYes, EdgeSortAny, nil, nil, nil, nil)
		return et, nil
	}

	numNodes := base.NumNodes()
	numEdges := base.NumEdges()

	adjIndices := make([]uint64, numNodes)
	dests := make([]Node, numEdges)
	edgePropIndices := make([]PropertyIndex, numEdges)
	scatter := make([]uint64, numNodes)

	// Count incoming edges per destination - these are the out degrees
	// of the transposed view

	err := workers.DoAll(numEdges, func(e uint64) {
		dst := base.OutEdgeDst(Edge(e))
		atomic.AddUint64(&adjIndices[dst], 1)
	})
	if err != nil {
		return nil, wrapParallelError(err)
	}

	if err = workers.PrefixSum(adjIndices); err != nil {
		return nil, wrapParallelError(err)
	}

	// Scatter offsets are the block starting points of each node

	err = workers.DoAll(numNodes, func(n uint64) {
		if n == 0 {
			scatter[0] = 0
		} else {
			scatter[n] = adjIndices[n-1]
		}
	})
	if err != nil {
		return nil, wrapParallelError(err)
	}

	// Reverse every edge into its destination block

	err = workers.DoAll(numNodes, func(n uint64) {
		src := Node(n)

		r := base.OutEdges(src)
		for e := r.Start; e < r.End; e++ {
			dst := base.OutEdgeDst(e)

			w := atomic.AddUint64(&scatter[dst], 1) - 1

			dests[w] = src
			edgePropIndices[w] = base.EdgePropertyIndex(e)
		}
	})
	if err != nil {
		return nil, wrapParallelError(err)
	}

	return newEdgeShuffleTopology(TransposeYes, EdgeSortAny,
		adjIndices, dests, edgePropIndices, nil), nil
}

/*
edgeDestSort jointly sorts a (property index, destination) slice pair by
destination while preserving the pairing.
*/
type edgeDestSort struct {
	props []PropertyIndex
	dests []Node
}

func (s edgeDestSort) Len() int           { return len(s.dests) }
func (s edgeDestSort) Less(i, j int) bool { return s.dests[i] < s.dests[j] }
func (s edgeDestSort) Swap(i, j int) {
	s.props[i], s.props[j] = s.props[j], s.props[i]
	s.dests[i], s.dests[j] = s.dests[j], s.dests[i]
}

/*
edgeTypeDestSort jointly sorts a (property index, destination) slice
pair lexicographically by (edge type, destination).
*/
type edgeTypeDestSort struct {
	props []PropertyIndex
	dests []Node
	src   EdgeTypeSource
}

func (s edgeTypeDestSort) Len() int { return len(s.dests) }
func (s edgeTypeDestSort) Less(i, j int) bool {
	t1 := s.src.TypeOfEdgeFromPropertyIndex(s.props[i])
	t2 := s.src.TypeOfEdgeFromPropertyIndex(s.props[j])

	if t1 != t2 {
		return t1 < t2
	}

	return s.dests[i] < s.dests[j]
}
func (s edgeTypeDestSort) Swap(i, j int) {
	s.props[i], s.props[j] = s.props[j], s.props[i]
	s.dests[i], s.dests[j] = s.dests[j], s.dests[i]
}

/*
SortEdgesByDestID sorts the edges of every node by destination ID.
*/
func (et *EdgeShuffleTopology) SortEdgesByDestID(workers *parallel.Workers) error {

	err := workers.DoAll(et.NumNodes(), func(n uint64) {
		r := et.OutEdges(Node(n))

		sort.Sort(edgeDestSort{et.edgePropIndices[r.Start:r.End],
			et.dests[r.Start:r.End]})
	})
	if err != nil {
		return wrapParallelError(err)
	}

	et.edgeSortState = EdgeSortByDestID

	return nil
}

/*
SortEdgesByTypeThenDest sorts the edges of every node lexicographically
by (edge type, destination ID). Edge types are looked up through the
property index since this view rearranges edges.
*/
func (et *EdgeShuffleTopology) SortEdgesByTypeThenDest(src EdgeTypeSource,
	workers *parallel.Workers) error {

	err := workers.DoAll(et.NumNodes(), func(n uint64) {
		r := et.OutEdges(Node(n))

		sort.Sort(edgeTypeDestSort{et.edgePropIndices[r.Start:r.End],
			et.dests[r.Start:r.End], src})
	})
	if err != nil {
		return wrapParallelError(err)
	}

	et.edgeSortState = EdgeSortByType

	return nil
}

/*
SortEdgesByDestType is a reserved extension point. The operation is
declared but not implemented yet.
*/
func (et *EdgeShuffleTopology) SortEdgesByDestType(src NodeTypeSource,
	workers *parallel.Workers) error {

	return &util.GraphError{Type: util.ErrNotImplemented,
		Detail: "SortEdgesByDestType"}
}

/*
FindEdge returns an edge from src to dst or InvalidEdge if no such edge
exists. Destination sorted views with a large out degree are searched
with a binary search, everything else with a linear scan.
*/
func (et *EdgeShuffleTopology) FindEdge(src Node, dst Node) Edge {
	r := et.OutEdges(src)

	if r.Size() > binarySearchThreshold &&
		et.HasEdgesSortedBy(EdgeSortByDestID) {

		off := sort.Search(int(r.Size()), func(i int) bool {
			return et.dests[r.Start+Edge(i)] >= dst
		})

		e := r.Start + Edge(off)
		if e < r.End && et.dests[e] == dst {
			return e
		}

		return InvalidEdge
	}

	if r.Size() > binarySearchThreshold {
		findEdgeWarnOnce.Do(func() {
			topoLogger.Warning("FindEdge: expect poor performance - ",
				"edges not sorted by destination ID")
		})
	}

	for e := r.Start; e < r.End; e++ {
		if et.dests[e] == dst {
			return e
		}
	}

	return InvalidEdge
}

/*
FindAllEdges returns the half-open range of all edges from src to dst.
The view must be sorted by destination ID.
*/
func (et *EdgeShuffleTopology) FindAllEdges(src Node, dst Node) (EdgeRange, error) {
	r := et.OutEdges(src)

	if r.Empty() {
		return EdgeRange{r.End, r.End}, nil
	}

	if !et.HasEdgesSortedBy(EdgeSortByDestID) {
		return EdgeRange{}, &util.GraphError{Type: util.ErrInvalidArgument,
			Detail: "FindAllEdges requires edges sorted by destination ID"}
	}

	first := sort.Search(int(r.Size()), func(i int) bool {
		return et.dests[r.Start+Edge(i)] >= dst
	})
	last := sort.Search(int(r.Size()), func(i int) bool {
		return et.dests[r.Start+Edge(i)] > dst
	})

	begin := r.Start + Edge(first)
	end := r.Start + Edge(last)

	if begin == end {
		return EdgeRange{r.End, r.End}, nil
	}

	return EdgeRange{begin, end}, nil
}
