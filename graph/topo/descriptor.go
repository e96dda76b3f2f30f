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
	"fmt"

	"github.com/krotik/partgraph/graph/util"
	"github.com/krotik/partgraph/parallel"
)

/*
Descriptor is the serializable form of a topology view. A descriptor
created by MakeShadowDescriptor carries tags only and is used as a
lookup key against persistent storage.

The arrays reference the live view's data and must not be modified.
*/
type Descriptor struct {
	Kind            TopologyKind    // Kind of the persisted view
	Tpose           TransposeState  // Edge direction tag
	EdgeSort        EdgeSortState   // Edge order tag
	NodeSort        NodeSortState   // Node order tag
	AdjIndices      []uint64        // Adjacency offsets (N or N*T values)
	Dests           []Node          // Destination node IDs
	EdgePropIndices []PropertyIndex // Edge property permutation
	NodePropIndices []PropertyIndex // Node property permutation
	TypeIDs         []EntityTypeID  // Dense index to type ID vector
}

/*
MakeShadowDescriptor creates a storage lookup key carrying tags only.
*/
func MakeShadowDescriptor(kind TopologyKind, tpose TransposeState,
	esort EdgeSortState, nsort NodeSortState) *Descriptor {

	return &Descriptor{Kind: kind, Tpose: tpose, EdgeSort: esort, NodeSort: nsort}
}

/*
IsShadow returns true if this descriptor carries no data.
*/
func (d *Descriptor) IsShadow() bool {
	return d.AdjIndices == nil && d.Dests == nil
}

/*
MatchesShadow returns true if this descriptor satisfies the given shadow
descriptor. Any-valued shadow tags match every state.
*/
func (d *Descriptor) MatchesShadow(shadow *Descriptor) bool {
	if d.Kind != shadow.Kind {
		return false
	}
	if shadow.Tpose != TransposeAny && d.Tpose != shadow.Tpose {
		return false
	}
	if shadow.EdgeSort != EdgeSortAny && d.EdgeSort != shadow.EdgeSort {
		return false
	}
	if shadow.NodeSort != NodeSortAny && d.NodeSort != shadow.NodeSort {
		return false
	}

	return true
}

/*
TagKey returns a string key of the descriptor's kind and tags.
*/
func (d *Descriptor) TagKey() string {
	return fmt.Sprintf("%v-%v-%v-%v", int(d.Kind), int(d.Tpose),
		int(d.EdgeSort), int(d.NodeSort))
}

/*
ViewStore models persistent storage for topology views.
*/
type ViewStore interface {

	/*
		Name returns the name of the view store.
	*/
	Name() string

	/*
		StoreTopology persists the given descriptor. An existing view
		with the same kind and tags is replaced.
	*/
	StoreTopology(desc *Descriptor) error

	/*
		LoadTopology returns a persisted descriptor matching the given
		shadow descriptor or nil if no view matches.
	*/
	LoadTopology(shadow *Descriptor) (*Descriptor, error)

	/*
		StoredTopologies returns the descriptors of all persisted
		views.
	*/
	StoredTopologies() ([]*Descriptor, error)

	/*
		Close closes the view store.
	*/
	Close() error
}

/*
ToDescriptor returns the serializable form of this edge-shuffle view.
*/
func (et *EdgeShuffleTopology) ToDescriptor() *Descriptor {
	return &Descriptor{KindEdgeShuffle, et.tposeState, et.edgeSortState,
		NodeSortAny, et.adjIndices, et.dests, et.edgePropIndices, nil, nil}
}

/*
ToDescriptor returns the serializable form of this shuffle view.
*/
func (st *ShuffleTopology) ToDescriptor() *Descriptor {
	return &Descriptor{KindShuffle, st.tposeState, st.edgeSortState,
		st.nodeSortState, st.adjIndices, st.dests, st.edgePropIndices,
		st.nodePropIndices, nil}
}

/*
ToDescriptor returns the serializable form of this edge-type-aware view.
The adjacency array holds the dense per-(node, type) offset table.
*/
func (ta *EdgeTypeAwareTopology) ToDescriptor() *Descriptor {
	return &Descriptor{KindEdgeTypeAware, ta.tposeState, ta.edgeSortState,
		NodeSortAny, ta.perTypeAdj, ta.dests, ta.edgePropIndices, nil,
		ta.typeMap.IndexToTypeMap()}
}

/*
makeEdgeShuffleFromDescriptor materializes an edge-shuffle view from a
persisted descriptor. The descriptor dimensions must match the graph.
*/
func makeEdgeShuffleFromDescriptor(desc *Descriptor, numNodes uint64,
	numEdges uint64, workers *parallel.Workers) (*EdgeShuffleTopology, error) {

	if uint64(len(desc.AdjIndices)) != numNodes ||
		uint64(len(desc.Dests)) != numEdges ||
		uint64(len(desc.EdgePropIndices)) != numEdges {

		return nil, &util.GraphError{Type: util.ErrFormatMismatch,
			Detail: "Persisted topology dimensions disagree with the graph"}
	}

	adjIndices := make([]uint64, numNodes)

	if err := workers.Copy(adjIndices, desc.AdjIndices); err != nil {
		return nil, wrapParallelError(err)
	}

	dests := make([]Node, numEdges)

	if err := CopyNodes(dests, desc.Dests, workers); err != nil {
		return nil, wrapParallelError(err)
	}

	edgePropIndices := make([]PropertyIndex, numEdges)

	if err := CopyIndices(edgePropIndices, desc.EdgePropIndices, workers); err != nil {
		return nil, wrapParallelError(err)
	}

	return newEdgeShuffleTopology(desc.Tpose, desc.EdgeSort, adjIndices,
		dests, edgePropIndices, nil), nil
}

/*
makeShuffleFromDescriptor materializes a fully shuffled view from a
persisted descriptor.
*/
func makeShuffleFromDescriptor(desc *Descriptor, numNodes uint64,
	numEdges uint64, workers *parallel.Workers) (*ShuffleTopology, error) {

	if uint64(len(desc.NodePropIndices)) != numNodes {
		return nil, &util.GraphError{Type: util.ErrFormatMismatch,
			Detail: "Persisted topology dimensions disagree with the graph"}
	}

	et, err := makeEdgeShuffleFromDescriptor(desc, numNodes, numEdges, workers)
	if err != nil {
		return nil, err
	}

	nodePropIndices := make([]PropertyIndex, numNodes)

	if err := CopyIndices(nodePropIndices, desc.NodePropIndices, workers); err != nil {
		return nil, wrapParallelError(err)
	}

	et.nodePropIndices = nodePropIndices

	st := &ShuffleTopology{*et}
	st.nodeSortState = desc.NodeSort

	return st, nil
}
