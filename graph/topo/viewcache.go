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
	"github.com/krotik/partgraph/graph/util"
	"github.com/krotik/partgraph/parallel"
)

/*
ViewCache memoizes derived topology views per (transpose, node sort,
edge sort) key. A requested view is served from the cache, loaded from
persistent storage through a shadow descriptor or synthesized from the
base topology and memoized.

The cache is the sole owner of its views. It is not safe against
concurrent modification; construction and lookup must be serialized by
the caller. Concurrent readers of distinct already built views are
safe.
*/
type ViewCache struct {
	base               *Topology                // Canonical base topology
	edgeTypes          EdgeTypeSource           // Edge type lookup of the graph
	nodeTypes          NodeTypeSource           // Node type lookup of the graph
	store              ViewStore                // Persistent storage (may be nil)
	workers            *parallel.Workers        // Worker set for construction
	edgeShuffTopos     []*EdgeShuffleTopology   // Cached edge-shuffle views
	fullShuffTopos     []*ShuffleTopology       // Cached fully shuffled views
	edgeTypeAwareTopos []*EdgeTypeAwareTopology // Cached edge-type-aware views
	typeMap            *CondensedTypeMap        // Lazily built edge type map
}

/*
NewViewCache creates a new view cache over the given base topology. The
view store may be nil in which case no persistence round trips happen.
*/
func NewViewCache(base *Topology, edgeTypes EdgeTypeSource,
	nodeTypes NodeTypeSource, store ViewStore,
	workers *parallel.Workers) *ViewCache {

	return &ViewCache{base, edgeTypes, nodeTypes, store, workers,
		nil, nil, nil, nil}
}

/*
DefaultTopology returns the canonical base topology.
*/
func (vc *ViewCache) DefaultTopology() *Topology {
	return vc.base
}

/*
ReseatDefaultTopology replaces the base topology. This is only permitted
while the current base has edge sort state any since no caller may
depend on the order of a sorted base.
*/
func (vc *ViewCache) ReseatDefaultTopology(other *Topology) error {
	if vc.base.edgeSortState != EdgeSortAny {
		return &util.GraphError{Type: util.ErrInvalidArgument,
			Detail: "Cannot reseat a base topology with a sort order"}
	}

	vc.base = other

	return nil
}

/*
DropAll reverts the cache to the empty state with a fresh base topology.
*/
func (vc *ViewCache) DropAll() {
	vc.base = NewTopology(nil, nil)

	vc.edgeShuffTopos = nil
	vc.fullShuffTopos = nil
	vc.edgeTypeAwareTopos = nil

	if vc.typeMap != nil {
		vc.typeMap.Invalidate()
		vc.typeMap = nil
	}
}

/*
GetOrBuildTypeMap returns the condensed edge type map of the graph
building it on first use.
*/
func (vc *ViewCache) GetOrBuildTypeMap() (*CondensedTypeMap, error) {
	if vc.typeMap != nil && vc.typeMap.IsValid() {
		return vc.typeMap, nil
	}

	tm, err := MakeCondensedEdgeTypeMap(vc.base.NumEdges(), func(e Edge) EntityTypeID {
		return vc.edgeTypes.TypeOfEdgeFromPropertyIndex(vc.base.EdgePropertyIndex(e))
	}, vc.workers)

	if err != nil {
		return nil, err
	}

	vc.typeMap = tm

	return vc.typeMap, nil
}

/*
GetOrBuildEdgeShuffle returns a cached edge-shuffle view matching the
given tags, loads one from persistent storage or synthesizes one from
the base topology and memoizes it.
*/
func (vc *ViewCache) GetOrBuildEdgeShuffle(tpose TransposeState,
	esort EdgeSortState) (*EdgeShuffleTopology, error) {

	return vc.getOrBuildEdgeShuffle(tpose, esort, false)
}

/*
PopEdgeShuffle is GetOrBuildEdgeShuffle except that the returned view is
removed from the cache. Used when constructing an edge-type-aware view
which consumes its sorted seed.
*/
func (vc *ViewCache) PopEdgeShuffle(tpose TransposeState,
	esort EdgeSortState) (*EdgeShuffleTopology, error) {

	return vc.getOrBuildEdgeShuffle(tpose, esort, true)
}

/*
getOrBuildEdgeShuffle implements the edge-shuffle lookup.
*/
func (vc *ViewCache) getOrBuildEdgeShuffle(tpose TransposeState,
	esort EdgeSortState, pop bool) (*EdgeShuffleTopology, error) {

	for i, t := range vc.edgeShuffTopos {
		if t.IsValid() && t.HasTransposeState(tpose) && t.HasEdgesSortedBy(esort) {

			if pop {
				vc.edgeShuffTopos = append(vc.edgeShuffTopos[:i],
					vc.edgeShuffTopos[i+1:]...)
			}

			return t, nil
		}
	}

	// A type sorted request can also be served by an edge-type-aware
	// view whose base shuffle matches - those are never popped

	if esort == EdgeSortByType {
		for _, t := range vc.edgeTypeAwareTopos {
			if t.IsValid() && t.HasTransposeState(tpose) {
				return &t.EdgeShuffleTopology, nil
			}
		}
	}

	newTopo, err := vc.loadOrBuildEdgeShuffle(tpose, esort)
	if err != nil {
		return nil, err
	}

	if !pop {
		vc.edgeShuffTopos = append(vc.edgeShuffTopos, newTopo)
	}

	return newTopo, nil
}

/*
loadOrBuildEdgeShuffle loads an edge-shuffle view from persistent
storage or synthesizes it from the base topology.
*/
func (vc *ViewCache) loadOrBuildEdgeShuffle(tpose TransposeState,
	esort EdgeSortState) (*EdgeShuffleTopology, error) {

	if vc.store != nil {
		shadow := MakeShadowDescriptor(KindEdgeShuffle, tpose, esort, NodeSortAny)

		desc, err := vc.store.LoadTopology(shadow)
		if err != nil {
			return nil, err
		}

		if desc != nil {
			return makeEdgeShuffleFromDescriptor(desc, vc.base.NumNodes(),
				vc.base.NumEdges(), vc.workers)
		}
	}

	var newTopo *EdgeShuffleTopology
	var err error

	if tpose == TransposeYes {
		newTopo, err = MakeTransposeEdgeShuffle(vc.base, vc.workers)
	} else {
		newTopo, err = MakeOriginalEdgeShuffle(vc.base, vc.workers)
	}

	if err != nil {
		return nil, err
	}

	switch esort {

	case EdgeSortByDestID:
		err = newTopo.SortEdgesByDestID(vc.workers)

	case EdgeSortByType:
		err = newTopo.SortEdgesByTypeThenDest(vc.edgeTypes, vc.workers)

	case EdgeSortByDestType:
		err = newTopo.SortEdgesByDestType(vc.nodeTypes, vc.workers)
	}

	if err != nil {
		return nil, err
	}

	return newTopo, nil
}

/*
GetOrBuildShuffle returns a cached fully shuffled view matching the
given tags, loads one from persistent storage or synthesizes one from a
seed edge-shuffle view and memoizes it.
*/
func (vc *ViewCache) GetOrBuildShuffle(tpose TransposeState,
	nsort NodeSortState, esort EdgeSortState) (*ShuffleTopology, error) {

	for _, t := range vc.fullShuffTopos {
		if t.IsValid() && t.HasTransposeState(tpose) &&
			t.HasEdgesSortedBy(esort) && t.HasNodesSortedBy(nsort) {

			return t, nil
		}
	}

	if vc.store != nil {
		shadow := MakeShadowDescriptor(KindShuffle, tpose, esort, nsort)

		desc, err := vc.store.LoadTopology(shadow)
		if err != nil {
			return nil, err
		}

		if desc != nil {
			newTopo, err := makeShuffleFromDescriptor(desc, vc.base.NumNodes(),
				vc.base.NumEdges(), vc.workers)
			if err != nil {
				return nil, err
			}

			vc.fullShuffTopos = append(vc.fullShuffTopos, newTopo)

			return newTopo, nil
		}
	}

	// The seed only needs the right transpose state - once the nodes
	// are shuffled the edges have to be re-sorted anyway

	seed, err := vc.GetOrBuildEdgeShuffle(tpose, EdgeSortAny)
	if err != nil {
		return nil, err
	}

	var newTopo *ShuffleTopology

	switch nsort {

	case NodeSortByDegree:
		newTopo, err = MakeDegreeSortedShuffle(seed, esort, vc.edgeTypes, vc.workers)

	case NodeSortByType:
		newTopo, err = MakeNodeTypeSortedShuffle(seed, esort, vc.nodeTypes,
			vc.edgeTypes, vc.workers)

	default:
		newTopo, err = makeShuffleTopology(seed,
			func(n1 Node, n2 Node) bool { return n1 < n2 },
			nsort, esort, vc.edgeTypes, vc.workers)
	}

	if err != nil {
		return nil, err
	}

	vc.fullShuffTopos = append(vc.fullShuffTopos, newTopo)

	return newTopo, nil
}

/*
GetOrBuildEdgeTypeAware returns a cached edge-type-aware view with the
given transpose state, loads one from persistent storage or synthesizes
one from a type sorted edge-shuffle view which is consumed.
*/
func (vc *ViewCache) GetOrBuildEdgeTypeAware(tpose TransposeState) (*EdgeTypeAwareTopology, error) {

	for _, t := range vc.edgeTypeAwareTopos {
		if t.IsValid() && t.HasTransposeState(tpose) {
			return t, nil
		}
	}

	var desc *Descriptor
	var err error

	if vc.store != nil {
		shadow := MakeShadowDescriptor(KindEdgeTypeAware, tpose,
			EdgeSortByType, NodeSortAny)

		if desc, err = vc.store.LoadTopology(shadow); err != nil {
			return nil, err
		}
	}

	// Generation and loading both consume a type sorted seed view
	// which is popped so it is not cached twice

	seed, err := vc.PopEdgeShuffle(tpose, EdgeSortByType)
	if err != nil {
		return nil, err
	}

	if !seed.HasEdgesSortedBy(EdgeSortByType) {
		return nil, &util.GraphError{Type: util.ErrAssertionFailed,
			Detail: "Popped seed view is not sorted by edge type"}
	}

	typeMap, err := vc.GetOrBuildTypeMap()
	if err != nil {
		return nil, err
	}

	var newTopo *EdgeTypeAwareTopology

	if desc != nil {
		newTopo, err = makeEdgeTypeAwareFromDescriptor(desc, typeMap, seed, vc.workers)
	} else {
		newTopo, err = MakeEdgeTypeAwareTopology(vc.edgeTypes, typeMap, seed, vc.workers)
	}

	if err != nil {
		return nil, err
	}

	vc.edgeTypeAwareTopos = append(vc.edgeTypeAwareTopos, newTopo)

	return newTopo, nil
}

/*
ToPersistable returns a serializable descriptor for every cached view in
a fixed order: edge-shuffles, then fully shuffled, then edge-type-aware.
*/
func (vc *ViewCache) ToPersistable() []*Descriptor {
	ret := make([]*Descriptor, 0, len(vc.edgeShuffTopos)+
		len(vc.fullShuffTopos)+len(vc.edgeTypeAwareTopos))

	for _, t := range vc.edgeShuffTopos {
		ret = append(ret, t.ToDescriptor())
	}
	for _, t := range vc.fullShuffTopos {
		ret = append(ret, t.ToDescriptor())
	}
	for _, t := range vc.edgeTypeAwareTopos {
		ret = append(ret, t.ToDescriptor())
	}

	return ret
}

/*
PersistAll writes all cached views to the view store wired in at
construction time.
*/
func (vc *ViewCache) PersistAll() error {
	return vc.PersistAllTo(vc.store)
}

/*
PersistAllTo writes all cached views to the given view store.
*/
func (vc *ViewCache) PersistAllTo(store ViewStore) error {
	if store == nil {
		return &util.GraphError{Type: util.ErrInvalidArgument,
			Detail: "No view store given"}
	}

	for _, desc := range vc.ToPersistable() {
		if err := store.StoreTopology(desc); err != nil {
			return err
		}
	}

	return nil
}

/*
LoadAll materializes every view persisted in the given store and
memoizes it. Views whose tags are already cached are skipped.
Edge-shuffles come first so they can seed the dependent kinds.
*/
func (vc *ViewCache) LoadAll(store ViewStore) error {
	if store == nil {
		return &util.GraphError{Type: util.ErrInvalidArgument,
			Detail: "No view store given"}
	}

	descs, err := store.StoredTopologies()
	if err != nil {
		return err
	}

	for _, kind := range []TopologyKind{KindEdgeShuffle, KindShuffle,
		KindEdgeTypeAware} {

		for _, desc := range descs {
			if desc.Kind != kind {
				continue
			}

			if err := vc.loadOne(desc); err != nil {
				return err
			}
		}
	}

	for _, desc := range descs {
		if desc.Kind != KindEdgeShuffle && desc.Kind != KindShuffle &&
			desc.Kind != KindEdgeTypeAware {

			return &util.GraphError{Type: util.ErrFormatMismatch,
				Detail: "Stored view has an unknown topology kind"}
		}
	}

	return nil
}

/*
loadOne materializes a single persisted view unless an equivalent view
is already cached.
*/
func (vc *ViewCache) loadOne(desc *Descriptor) error {

	switch desc.Kind {

	case KindEdgeShuffle:
		for _, t := range vc.edgeShuffTopos {
			if t.IsValid() && t.tposeState == desc.Tpose &&
				t.edgeSortState == desc.EdgeSort {
				return nil
			}
		}

		newTopo, err := makeEdgeShuffleFromDescriptor(desc, vc.base.NumNodes(),
			vc.base.NumEdges(), vc.workers)
		if err != nil {
			return err
		}

		vc.edgeShuffTopos = append(vc.edgeShuffTopos, newTopo)

	case KindShuffle:
		for _, t := range vc.fullShuffTopos {
			if t.IsValid() && t.tposeState == desc.Tpose &&
				t.edgeSortState == desc.EdgeSort &&
				t.nodeSortState == desc.NodeSort {
				return nil
			}
		}

		newTopo, err := makeShuffleFromDescriptor(desc, vc.base.NumNodes(),
			vc.base.NumEdges(), vc.workers)
		if err != nil {
			return err
		}

		vc.fullShuffTopos = append(vc.fullShuffTopos, newTopo)

	case KindEdgeTypeAware:
		for _, t := range vc.edgeTypeAwareTopos {
			if t.IsValid() && t.tposeState == desc.Tpose {
				return nil
			}
		}

		seed, err := vc.PopEdgeShuffle(desc.Tpose, EdgeSortByType)
		if err != nil {
			return err
		}

		typeMap, err := vc.GetOrBuildTypeMap()
		if err != nil {
			return err
		}

		newTopo, err := makeEdgeTypeAwareFromDescriptor(desc, typeMap,
			seed, vc.workers)
		if err != nil {
			return err
		}

		vc.edgeTypeAwareTopos = append(vc.edgeTypeAwareTopos, newTopo)
	}

	return nil
}
