/*
 * PartGraph
 *
 * Copyright 2020 Matthias Ladkau. All rights reserved.
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

package graph

import (
	"github.com/krotik/common/errorutil"

	"github.com/krotik/partgraph/graph/topo"
	"github.com/krotik/partgraph/graph/util"
)

/*
Topology returns the base topology of the partition.
*/
func (gm *Manager) Topology() *topo.Topology {
	return gm.viewCache.DefaultTopology()
}

/*
NumNodes returns the number of nodes of the partition.
*/
func (gm *Manager) NumNodes() uint64 {
	return gm.Topology().NumNodes()
}

/*
NumEdges returns the number of edges of the partition.
*/
func (gm *Manager) NumEdges() uint64 {
	return gm.Topology().NumEdges()
}

/*
TypeOfNodeFromPropertyIndex returns the type of the node with the given
property index. The index must be valid.
*/
func (gm *Manager) TypeOfNodeFromPropertyIndex(index topo.PropertyIndex) topo.EntityTypeID {
	errorutil.AssertTrue(uint64(index) < uint64(len(gm.nodeTypes)),
		"Node property index out of range")

	return gm.nodeTypes[index]
}

/*
TypeOfEdgeFromPropertyIndex returns the type of the edge with the given
property index. The index must be valid.
*/
func (gm *Manager) TypeOfEdgeFromPropertyIndex(index topo.PropertyIndex) topo.EntityTypeID {
	errorutil.AssertTrue(uint64(index) < uint64(len(gm.edgeTypes)),
		"Edge property index out of range")

	return gm.edgeTypes[index]
}

/*
NodeType returns the type of the node with the given property index.
*/
func (gm *Manager) NodeType(index topo.PropertyIndex) (topo.EntityTypeID, error) {
	if uint64(index) >= uint64(len(gm.nodeTypes)) {
		return 0, &util.GraphError{Type: util.ErrInvalidArgument,
			Detail: "Illegal node property index"}
	}

	return gm.nodeTypes[index], nil
}

/*
EdgeType returns the type of the edge with the given property index.
*/
func (gm *Manager) EdgeType(index topo.PropertyIndex) (topo.EntityTypeID, error) {
	if uint64(index) >= uint64(len(gm.edgeTypes)) {
		return 0, &util.GraphError{Type: util.ErrInvalidArgument,
			Detail: "Illegal edge property index"}
	}

	return gm.edgeTypes[index], nil
}

/*
TypeOfEdgeFromTopoIndex returns the type of an edge given its topology
ID in the base topology.
*/
func (gm *Manager) TypeOfEdgeFromTopoIndex(edge topo.Edge) topo.EntityTypeID {
	return gm.TypeOfEdgeFromPropertyIndex(gm.Topology().EdgePropertyIndex(edge))
}

/*
EdgeShuffleView returns an edge-shuffle view with the given transpose
and edge sort state.
*/
func (gm *Manager) EdgeShuffleView(tpose topo.TransposeState,
	esort topo.EdgeSortState) (*topo.EdgeShuffleTopology, error) {

	return gm.viewCache.GetOrBuildEdgeShuffle(tpose, esort)
}

/*
PopEdgeShuffleView returns an edge-shuffle view and removes it from the
view cache.
*/
func (gm *Manager) PopEdgeShuffleView(tpose topo.TransposeState,
	esort topo.EdgeSortState) (*topo.EdgeShuffleTopology, error) {

	return gm.viewCache.PopEdgeShuffle(tpose, esort)
}

/*
ShuffleView returns a fully shuffled view with the given transpose,
node sort and edge sort state.
*/
func (gm *Manager) ShuffleView(tpose topo.TransposeState,
	nsort topo.NodeSortState, esort topo.EdgeSortState) (*topo.ShuffleTopology, error) {

	return gm.viewCache.GetOrBuildShuffle(tpose, nsort, esort)
}

/*
EdgeTypeAwareView returns an edge-type-aware view with the given
transpose state.
*/
func (gm *Manager) EdgeTypeAwareView(tpose topo.TransposeState) (*topo.EdgeTypeAwareTopology, error) {
	return gm.viewCache.GetOrBuildEdgeTypeAware(tpose)
}

/*
EdgeTypeMap returns the condensed edge type map of the partition.
*/
func (gm *Manager) EdgeTypeMap() (*topo.CondensedTypeMap, error) {
	return gm.viewCache.GetOrBuildTypeMap()
}

/*
DropCachedViews reverts the view cache to the empty state with a fresh
base topology.
*/
func (gm *Manager) DropCachedViews() {
	gm.viewCache.DropAll()
}

/*
ReseatTopology replaces the base topology of the partition. This is
only permitted while the current base has no edge sort order.
*/
func (gm *Manager) ReseatTopology(base *topo.Topology) error {
	return gm.viewCache.ReseatDefaultTopology(base)
}

/*
PersistViews writes all cached topology views to the view store wired
in at construction time.
*/
func (gm *Manager) PersistViews() error {
	return gm.viewCache.PersistAll()
}

/*
FlushViews writes all cached topology views to the given view store.
*/
func (gm *Manager) FlushViews(store topo.ViewStore) error {
	return gm.viewCache.PersistAllTo(store)
}

/*
LoadViews materializes every view persisted in the given store and
caches it. Views whose tags are already cached are skipped.
*/
func (gm *Manager) LoadViews(store topo.ViewStore) error {
	return gm.viewCache.LoadAll(store)
}

/*
ViewCache returns the view cache of the partition.
*/
func (gm *Manager) ViewCache() *topo.ViewCache {
	return gm.viewCache
}
