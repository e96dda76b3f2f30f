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
Package topo contains the in-memory graph topologies of the datastore.

The base topology is a compressed sparse adjacency (an offsets array
plus a flat destinations array). All other topologies are immutable
views derived from it: the edge-shuffle topology reorders or reverses
edges, the shuffle topology additionally permutes nodes and the
edge-type-aware topology extends a type-sorted edge-shuffle with a
dense per-(node, type) adjacency index. Views carry state tags which
identify them inside the ViewCache.

Reordered views keep indices into the original property table rather
than copies of property data. The property index of an entity equals
its topology ID unless the view reorders entities.
*/
package topo

/*
Node is a node ID in [0, NumNodes).
*/
type Node uint32

/*
Edge is an edge ID in [0, NumEdges).
*/
type Edge uint64

/*
PropertyIndex identifies a row in the property table for a node or edge.
*/
type PropertyIndex uint64

/*
EntityTypeID is the sparse ID of a node or edge type.
*/
type EntityTypeID uint16

/*
InvalidEdge is the sentinel returned by edge searches on absence.
*/
const InvalidEdge = Edge(0xFFFFFFFFFFFFFFFF)

/*
TransposeState describes the edge direction of a topology view.
*/
type TransposeState int

/*
Possible transpose states. TransposeAny matches any state during cache
lookups.
*/
const (
	TransposeNone TransposeState = iota
	TransposeYes
	TransposeAny
)

/*
EdgeSortState describes the edge order of a topology view.
*/
type EdgeSortState int

/*
Possible edge sort states. EdgeSortAny matches any state during cache
lookups. EdgeSortByType orders edges by type then destination.
EdgeSortByDestType is a reserved extension point which no operation
produces yet.
*/
const (
	EdgeSortAny EdgeSortState = iota
	EdgeSortByDestID
	EdgeSortByType
	EdgeSortByDestType
)

/*
NodeSortState describes the node order of a topology view.
*/
type NodeSortState int

/*
Possible node sort states. NodeSortAny matches any state during cache
lookups.
*/
const (
	NodeSortAny NodeSortState = iota
	NodeSortByDegree
	NodeSortByType
)

/*
TopologyKind identifies the kind of a persisted topology view.
*/
type TopologyKind int

/*
Possible topology kinds.
*/
const (
	KindCSR TopologyKind = iota
	KindEdgeShuffle
	KindShuffle
	KindEdgeTypeAware
)

/*
EdgeTypeSource provides the type of an edge given its property index.
It is implemented by the property graph manager which owns the edge
type column.
*/
type EdgeTypeSource interface {

	/*
		TypeOfEdgeFromPropertyIndex returns the type of the edge with
		the given property index.
	*/
	TypeOfEdgeFromPropertyIndex(index PropertyIndex) EntityTypeID
}

/*
NodeTypeSource provides the type of a node given its property index.
*/
type NodeTypeSource interface {

	/*
		TypeOfNodeFromPropertyIndex returns the type of the node with
		the given property index.
	*/
	TypeOfNodeFromPropertyIndex(index PropertyIndex) EntityTypeID
}

/*
View is the narrow adjacency query capability which all topology views
provide.
*/
type View interface {

	/*
		NumNodes returns the number of nodes.
	*/
	NumNodes() uint64

	/*
		NumEdges returns the number of edges.
	*/
	NumEdges() uint64

	/*
		OutEdges returns the half-open edge ID range of a node.
	*/
	OutEdges(node Node) EdgeRange

	/*
		OutEdgeDst returns the destination node of an edge.
	*/
	OutEdgeDst(edge Edge) Node

	/*
		EdgePropertyIndex returns the property table row of an edge.
	*/
	EdgePropertyIndex(edge Edge) PropertyIndex
}
