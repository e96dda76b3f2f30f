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

	"github.com/krotik/partgraph/graph/util"
	"github.com/krotik/partgraph/parallel"
)

/*
ShuffleTopology is an edge-shuffle view whose nodes have been permuted
as well. The node property indices hold the permutation back to the
original property table rows.
*/
type ShuffleTopology struct {
	EdgeShuffleTopology
}

/*
nodePermSort sorts a node permutation with a supplied comparator.
*/
type nodePermSort struct {
	perm []uint64
	less func(n1 Node, n2 Node) bool
}

func (s nodePermSort) Len() int           { return len(s.perm) }
func (s nodePermSort) Less(i, j int) bool { return s.less(Node(s.perm[i]), Node(s.perm[j])) }
func (s nodePermSort) Swap(i, j int)      { s.perm[i], s.perm[j] = s.perm[j], s.perm[i] }

/*
MakeDegreeSortedShuffle creates a fully shuffled view from a seed
edge-shuffle view with nodes ordered by descending out degree. Ties are
broken by node ID so equal inputs yield identical permutations.
*/
func MakeDegreeSortedShuffle(seed *EdgeShuffleTopology, esort EdgeSortState,
	edgeTypes EdgeTypeSource, workers *parallel.Workers) (*ShuffleTopology, error) {

	less := func(n1 Node, n2 Node) bool {
		d1 := seed.OutDegree(n1)
		d2 := seed.OutDegree(n2)
		if d1 == d2 {
			return n1 < n2
		}
		return d1 > d2
	}

	return makeShuffleTopology(seed, less, NodeSortByDegree, esort,
		edgeTypes, workers)
}

/*
MakeNodeTypeSortedShuffle creates a fully shuffled view from a seed
edge-shuffle view with nodes ordered by node type. Node types are
looked up through the seed's property indices.
*/
func MakeNodeTypeSortedShuffle(seed *EdgeShuffleTopology, esort EdgeSortState,
	nodeTypes NodeTypeSource, edgeTypes EdgeTypeSource,
	workers *parallel.Workers) (*ShuffleTopology, error) {

	less := func(n1 Node, n2 Node) bool {
		k1 := nodeTypes.TypeOfNodeFromPropertyIndex(seed.NodePropertyIndex(n1))
		k2 := nodeTypes.TypeOfNodeFromPropertyIndex(seed.NodePropertyIndex(n2))
		if k1 == k2 {
			return n1 < n2
		}
		return k1 < k2
	}

	return makeShuffleTopology(seed, less, NodeSortByType, esort,
		edgeTypes, workers)
}

/*
makeShuffleTopology permutes the nodes of a seed view with the given
comparator and re-sorts the edges afterwards since the seed's edge
order is meaningless under the new node numbering.
*/
func makeShuffleTopology(seed *EdgeShuffleTopology, less func(n1 Node, n2 Node) bool,
	nsort NodeSortState, esort EdgeSortState, edgeTypes EdgeTypeSource,
	workers *parallel.Workers) (*ShuffleTopology, error) {

	st, err := makeNodeSortedTopo(seed, less, nsort, workers)
	if err != nil {
		return nil, err
	}

	switch esort {

	case EdgeSortByDestID:
		err = st.SortEdgesByDestID(workers)

	case EdgeSortByType:
		err = st.SortEdgesByTypeThenDest(edgeTypes, workers)
	}

	if err != nil {
		return nil, err
	}

	return st, nil
}

/*
makeNodeSortedTopo permutes the nodes of a seed edge-shuffle view with
the given comparator.
*/
func makeNodeSortedTopo(seed *EdgeShuffleTopology, less func(n1 Node, n2 Node) bool,
	nsort NodeSortState, workers *parallel.Workers) (*ShuffleTopology, error) {

	numNodes := seed.NumNodes()
	numEdges := seed.NumEdges()

	// Build the node permutation - perm maps new node IDs to seed node IDs

	perm := make([]uint64, numNodes)

	if err := workers.Iota(perm, 0); err != nil {
		return nil, wrapParallelError(err)
	}

	sort.Sort(nodePermSort{perm, less})

	// The inverse permutation rewrites seed destination IDs

	inverse := make([]Node, numNodes)

	err := workers.DoAll(numNodes, func(i uint64) {
		inverse[perm[i]] = Node(i)
	})
	if err != nil {
		return nil, wrapParallelError(err)
	}

	// New offsets are the prefix sum over the permuted degrees

	adjIndices := make([]uint64, numNodes)

	err = workers.DoAll(numNodes, func(i uint64) {
		adjIndices[i] = seed.OutDegree(Node(perm[i]))
	})
	if err != nil {
		return nil, wrapParallelError(err)
	}

	if err = workers.PrefixSum(adjIndices); err != nil {
		return nil, wrapParallelError(err)
	}

	dests := make([]Node, numEdges)
	edgePropIndices := make([]PropertyIndex, numEdges)
	nodePropIndices := make([]PropertyIndex, numNodes)

	err = workers.DoAll(numNodes, func(i uint64) {
		oldNode := Node(perm[i])

		nodePropIndices[i] = seed.NodePropertyIndex(oldNode)

		w := uint64(0)
		if i > 0 {
			w = adjIndices[i-1]
		}

		r := seed.OutEdges(oldNode)
		for e := r.Start; e < r.End; e++ {
			dests[w] = inverse[seed.OutEdgeDst(e)]
			edgePropIndices[w] = seed.EdgePropertyIndex(e)
			w++
		}
	})
	if err != nil {
		return nil, wrapParallelError(err)
	}

	st := &ShuffleTopology{*newEdgeShuffleTopology(seed.tposeState, EdgeSortAny,
		adjIndices, dests, edgePropIndices, nodePropIndices)}

	st.nodeSortState = nsort

	return st, nil
}

/*
MakeShuffleFrom is a reserved extension point for deriving a fully
shuffled view directly from a property graph. The operation is
declared but not implemented yet.
*/
func MakeShuffleFrom(src EdgeTypeSource, seed *EdgeShuffleTopology) (*ShuffleTopology, error) {
	return nil, &util.GraphError{Type: util.ErrNotImplemented,
		Detail: "MakeShuffleFrom"}
}
