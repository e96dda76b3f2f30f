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
	"bytes"
	"fmt"

	"github.com/krotik/common/errorutil"
	"github.com/krotik/common/stringutil"

	"github.com/krotik/partgraph/parallel"
)

/*
EdgeRange is a half-open range of edge IDs.
*/
type EdgeRange struct {
	Start Edge // First edge of the range
	End   Edge // One-past-last edge of the range
}

/*
Size returns the number of edges in the range.
*/
func (r EdgeRange) Size() uint64 {
	return uint64(r.End - r.Start)
}

/*
Empty returns true if the range contains no edges.
*/
func (r EdgeRange) Empty() bool {
	return r.Start >= r.End
}

/*
Topology is the base compressed sparse adjacency of a graph partition.

adjIndices[i] holds the one-past-last edge ID of node i, so the edges of
node i are [adjIndices[i-1], adjIndices[i]) with 0 as base of node 0 and
adjIndices[NumNodes-1] == NumEdges. The destination of edge e is
dests[e]. The optional property index arrays map topology IDs back to
property table rows; when absent the identity is implied.
*/
type Topology struct {
	adjIndices      []uint64        // One-past-last edge offsets per node
	dests           []Node          // Destination node of each edge
	edgePropIndices []PropertyIndex // Property table rows of edges (optional)
	nodePropIndices []PropertyIndex // Property table rows of nodes (optional)
	tposeState      TransposeState  // Edge direction of this view
	edgeSortState   EdgeSortState   // Edge order of this view
	nodeSortState   NodeSortState   // Node order of this view
}

/*
NewTopology creates a new base topology taking ownership of the given
arrays.
*/
func NewTopology(adjIndices []uint64, dests []Node) *Topology {
	return &Topology{adjIndices, dests, nil, nil,
		TransposeNone, EdgeSortAny, NodeSortAny}
}

/*
NewTopologyWithProps creates a new topology taking ownership of the
given arrays including property index permutations.
*/
func NewTopologyWithProps(adjIndices []uint64, dests []Node,
	edgePropIndices []PropertyIndex, nodePropIndices []PropertyIndex) *Topology {

	return &Topology{adjIndices, dests, edgePropIndices, nodePropIndices,
		TransposeNone, EdgeSortAny, NodeSortAny}
}

/*
CopyNodes copies a node ID array using the parallel worker set. Both
arrays must have the same length.
*/
func CopyNodes(dst []Node, src []Node, workers *parallel.Workers) error {
	return workers.DoAll(uint64(len(src)), func(i uint64) {
		dst[i] = src[i]
	})
}

/*
CopyIndices copies a property index array using the parallel worker
set. Both arrays must have the same length.
*/
func CopyIndices(dst []PropertyIndex, src []PropertyIndex, workers *parallel.Workers) error {
	return workers.DoAll(uint64(len(src)), func(i uint64) {
		dst[i] = src[i]
	})
}

/*
CopyTopology creates a deep copy of the given topology using the
parallel copy primitives.
*/
func CopyTopology(t *Topology, workers *parallel.Workers) (*Topology, error) {
	adj := make([]uint64, len(t.adjIndices))

	if err := workers.Copy(adj, t.adjIndices); err != nil {
		return nil, err
	}

	dests := make([]Node, len(t.dests))

	if err := CopyNodes(dests, t.dests, workers); err != nil {
		return nil, err
	}

	ret := &Topology{adj, dests, nil, nil,
		t.tposeState, t.edgeSortState, t.nodeSortState}

	if t.edgePropIndices != nil {
		ret.edgePropIndices = make([]PropertyIndex, len(t.edgePropIndices))

		if err := CopyIndices(ret.edgePropIndices, t.edgePropIndices, workers); err != nil {
			return nil, err
		}
	}

	if t.nodePropIndices != nil {
		ret.nodePropIndices = make([]PropertyIndex, len(t.nodePropIndices))

		if err := CopyIndices(ret.nodePropIndices, t.nodePropIndices, workers); err != nil {
			return nil, err
		}
	}

	return ret, nil
}

/*
NumNodes returns the number of nodes.
*/
func (t *Topology) NumNodes() uint64 {
	return uint64(len(t.adjIndices))
}

/*
NumEdges returns the number of edges.
*/
func (t *Topology) NumEdges() uint64 {
	return uint64(len(t.dests))
}

/*
Empty returns true if the topology has no nodes.
*/
func (t *Topology) Empty() bool {
	return len(t.adjIndices) == 0
}

/*
nodeBase returns the first edge ID of a node.
*/
func (t *Topology) nodeBase(node Node) Edge {
	if node == 0 {
		return 0
	}

	return Edge(t.adjIndices[node-1])
}

/*
OutDegree returns the number of outgoing edges of a node.
*/
func (t *Topology) OutDegree(node Node) uint64 {
	errorutil.AssertTrue(uint64(node) < t.NumNodes(), "Node ID out of range")

	return t.adjIndices[node] - uint64(t.nodeBase(node))
}

/*
OutEdges returns the half-open edge ID range of a node.
*/
func (t *Topology) OutEdges(node Node) EdgeRange {
	errorutil.AssertTrue(uint64(node) < t.NumNodes(), "Node ID out of range")

	return EdgeRange{t.nodeBase(node), Edge(t.adjIndices[node])}
}

/*
OutEdgeDst returns the destination node of an edge.
*/
func (t *Topology) OutEdgeDst(edge Edge) Node {
	errorutil.AssertTrue(uint64(edge) < t.NumEdges(), "Edge ID out of range")

	return t.dests[edge]
}

/*
EdgePropertyIndex returns the property table row of an edge. Without a
stored permutation the edge ID itself is the property index.
*/
func (t *Topology) EdgePropertyIndex(edge Edge) PropertyIndex {
	errorutil.AssertTrue(uint64(edge) < t.NumEdges(), "Edge ID out of range")

	if t.edgePropIndices == nil {
		return PropertyIndex(edge)
	}

	return t.edgePropIndices[edge]
}

/*
NodePropertyIndex returns the property table row of a node. Without a
stored permutation the node ID itself is the property index.
*/
func (t *Topology) NodePropertyIndex(node Node) PropertyIndex {
	errorutil.AssertTrue(uint64(node) < t.NumNodes() || t.NumNodes() == 0,
		"Node ID out of range")

	if t.nodePropIndices == nil {
		return PropertyIndex(node)
	}

	return t.nodePropIndices[node]
}

/*
TransposeState returns the edge direction tag of this view.
*/
func (t *Topology) TransposeState() TransposeState {
	return t.tposeState
}

/*
EdgeSortState returns the edge order tag of this view.
*/
func (t *Topology) EdgeSortState() EdgeSortState {
	return t.edgeSortState
}

/*
NodeSortState returns the node order tag of this view.
*/
func (t *Topology) NodeSortState() NodeSortState {
	return t.nodeSortState
}

/*
HasTransposeState returns true if this view matches the given transpose
state. TransposeAny matches everything.
*/
func (t *Topology) HasTransposeState(state TransposeState) bool {
	return state == TransposeAny || t.tposeState == state
}

/*
HasEdgesSortedBy returns true if this view matches the given edge sort
state. EdgeSortAny matches everything.
*/
func (t *Topology) HasEdgesSortedBy(state EdgeSortState) bool {
	return state == EdgeSortAny || t.edgeSortState == state
}

/*
HasNodesSortedBy returns true if this view matches the given node sort
state. NodeSortAny matches everything.
*/
func (t *Topology) HasNodesSortedBy(state NodeSortState) bool {
	return state == NodeSortAny || t.nodeSortState == state
}

/*
String returns a string representation of this topology.
*/
func (t *Topology) String() string {
	buf := &bytes.Buffer{}

	buf.WriteString(fmt.Sprintf("Topology %v node%v %v edge%v\n",
		t.NumNodes(), stringutil.Plural(int(t.NumNodes())),
		t.NumEdges(), stringutil.Plural(int(t.NumEdges()))))
	buf.WriteString(fmt.Sprintf("adjIndices: %v\n", t.adjIndices))
	buf.WriteString(fmt.Sprintf("dests: %v\n", t.dests))

	return buf.String()
}
