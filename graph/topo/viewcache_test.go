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
	"testing"

	"github.com/krotik/partgraph/graph/util"
	"github.com/krotik/partgraph/parallel"
)

/*
testViewStore is a minimal in-memory view store for cache tests.
*/
type testViewStore struct {
	descs []*Descriptor
}

func (vs *testViewStore) Name() string {
	return "test"
}

func (vs *testViewStore) StoreTopology(desc *Descriptor) error {
	vs.descs = append(vs.descs, desc)
	return nil
}

func (vs *testViewStore) LoadTopology(shadow *Descriptor) (*Descriptor, error) {
	for _, d := range vs.descs {
		if d.MatchesShadow(shadow) {
			return d, nil
		}
	}

	return nil, nil
}

func (vs *testViewStore) StoredTopologies() ([]*Descriptor, error) {
	return vs.descs, nil
}

func (vs *testViewStore) Close() error {
	return nil
}

func newTestViewCache(store ViewStore, w *parallel.Workers) *ViewCache {
	src := &testTypeSource{testEdgeTypes, []EntityTypeID{1, 1, 2, 2}}

	return NewViewCache(newTestTopology(), src, src, store, w)
}

func TestViewCacheMemoization(t *testing.T) {
	w := parallel.NewWorkers(4)
	defer w.Close()

	vc := newTestViewCache(nil, w)

	if vc.DefaultTopology().NumNodes() != 4 {
		t.Error("Unexpected base topology")
		return
	}

	et1, err := vc.GetOrBuildEdgeShuffle(TransposeNone, EdgeSortByDestID)
	if err != nil {
		t.Error(err)
		return
	}

	// A second request must return the memoized view

	et2, err := vc.GetOrBuildEdgeShuffle(TransposeNone, EdgeSortByDestID)
	if err != nil {
		t.Error(err)
		return
	}

	if et1 != et2 {
		t.Error("Expected the memoized view")
		return
	}

	// An any-sorted request is also satisfied by the sorted view

	et3, err := vc.GetOrBuildEdgeShuffle(TransposeNone, EdgeSortAny)
	if err != nil {
		t.Error(err)
		return
	}

	if et3 != et1 {
		t.Error("Expected the memoized view for an any-sorted request")
		return
	}

	// A transposed request builds a new view

	tet, err := vc.GetOrBuildEdgeShuffle(TransposeYes, EdgeSortAny)
	if err != nil {
		t.Error(err)
		return
	}

	if tet == et1 || tet.TransposeState() != TransposeYes {
		t.Error("Unexpected transposed view")
		return
	}

	if len(vc.edgeShuffTopos) != 2 {
		t.Error("Unexpected number of cached views:", len(vc.edgeShuffTopos))
		return
	}
}

func TestViewCachePop(t *testing.T) {
	w := parallel.NewWorkers(4)
	defer w.Close()

	vc := newTestViewCache(nil, w)

	et1, err := vc.GetOrBuildEdgeShuffle(TransposeNone, EdgeSortByDestID)
	if err != nil {
		t.Error(err)
		return
	}

	popped, err := vc.PopEdgeShuffle(TransposeNone, EdgeSortByDestID)
	if err != nil {
		t.Error(err)
		return
	}

	if popped != et1 || len(vc.edgeShuffTopos) != 0 {
		t.Error("Expected the cached view to be popped")
		return
	}

	// A pop on an empty cache builds without caching

	popped2, err := vc.PopEdgeShuffle(TransposeNone, EdgeSortByDestID)
	if err != nil {
		t.Error(err)
		return
	}

	if popped2 == popped || len(vc.edgeShuffTopos) != 0 {
		t.Error("Expected a fresh uncached view")
		return
	}
}

func TestViewCacheShuffle(t *testing.T) {
	w := parallel.NewWorkers(4)
	defer w.Close()

	vc := newTestViewCache(nil, w)

	st1, err := vc.GetOrBuildShuffle(TransposeNone, NodeSortByDegree, EdgeSortByDestID)
	if err != nil {
		t.Error(err)
		return
	}

	if st1.NodeSortState() != NodeSortByDegree ||
		st1.EdgeSortState() != EdgeSortByDestID {

		t.Error("Unexpected shuffle view state")
		return
	}

	st2, err := vc.GetOrBuildShuffle(TransposeNone, NodeSortByDegree, EdgeSortByDestID)
	if err != nil {
		t.Error(err)
		return
	}

	if st1 != st2 {
		t.Error("Expected the memoized shuffle view")
		return
	}

	// The edge-shuffle seed got cached along the way

	if len(vc.edgeShuffTopos) != 1 || len(vc.fullShuffTopos) != 1 {
		t.Error("Unexpected cache state")
		return
	}
}

func TestViewCacheEdgeTypeAware(t *testing.T) {
	w := parallel.NewWorkers(4)
	defer w.Close()

	vc := newTestViewCache(nil, w)

	ta1, err := vc.GetOrBuildEdgeTypeAware(TransposeNone)
	if err != nil {
		t.Error(err)
		return
	}

	ta2, err := vc.GetOrBuildEdgeTypeAware(TransposeNone)
	if err != nil {
		t.Error(err)
		return
	}

	if ta1 != ta2 {
		t.Error("Expected the memoized type aware view")
		return
	}

	// The sorted seed was consumed - it must not appear in the
	// edge-shuffle collection

	for _, et := range vc.edgeShuffTopos {
		if et.HasEdgesSortedBy(EdgeSortByType) {
			t.Error("The consumed seed is still cached")
			return
		}
	}

	// A type sorted edge-shuffle request is served by the type aware view

	et, err := vc.GetOrBuildEdgeShuffle(TransposeNone, EdgeSortByType)
	if err != nil {
		t.Error(err)
		return
	}

	if et != &ta1.EdgeShuffleTopology {
		t.Error("Expected the type aware view's base shuffle")
		return
	}

	// The type map is built once and memoized

	tm1, err := vc.GetOrBuildTypeMap()
	if err != nil {
		t.Error(err)
		return
	}

	tm2, err := vc.GetOrBuildTypeMap()
	if err != nil {
		t.Error(err)
		return
	}

	if tm1 != tm2 || tm1 != ta1.TypeMap() {
		t.Error("Expected the memoized type map")
		return
	}
}

func TestViewCacheDropAllAndReseat(t *testing.T) {
	w := parallel.NewWorkers(4)
	defer w.Close()

	vc := newTestViewCache(nil, w)

	if _, err := vc.GetOrBuildEdgeTypeAware(TransposeNone); err != nil {
		t.Error(err)
		return
	}

	tm, _ := vc.GetOrBuildTypeMap()

	vc.DropAll()

	if !vc.DefaultTopology().Empty() || len(vc.edgeShuffTopos) != 0 ||
		len(vc.fullShuffTopos) != 0 || len(vc.edgeTypeAwareTopos) != 0 {

		t.Error("Unexpected cache state after drop")
		return
	}

	if tm.IsValid() {
		t.Error("The type map should have been invalidated")
		return
	}

	// Reseating is permitted on an unsorted base

	newBase := newTestTopology()

	if err := vc.ReseatDefaultTopology(newBase); err != nil {
		t.Error(err)
		return
	}

	if vc.DefaultTopology() != newBase {
		t.Error("Unexpected base after reseat")
		return
	}

	// A sorted base must not be reseated

	vc.base.edgeSortState = EdgeSortByDestID

	err := vc.ReseatDefaultTopology(newTestTopology())

	if ge, ok := err.(*util.GraphError); !ok || ge.Type != util.ErrInvalidArgument {
		t.Error("Expected an invalid argument error:", err)
		return
	}
}

func TestViewCachePersistable(t *testing.T) {
	w := parallel.NewWorkers(4)
	defer w.Close()

	store := &testViewStore{}

	vc := newTestViewCache(store, w)

	if _, err := vc.GetOrBuildEdgeShuffle(TransposeNone, EdgeSortByDestID); err != nil {
		t.Error(err)
		return
	}
	if _, err := vc.GetOrBuildShuffle(TransposeNone, NodeSortByDegree, EdgeSortAny); err != nil {
		t.Error(err)
		return
	}
	if _, err := vc.GetOrBuildEdgeTypeAware(TransposeNone); err != nil {
		t.Error(err)
		return
	}

	// Descriptors come in a fixed order: edge-shuffles, then fully
	// shuffled, then edge-type-aware

	descs := vc.ToPersistable()

	if len(descs) != 3 {
		t.Error("Unexpected number of descriptors:", len(descs))
		return
	}

	expectedKinds := []TopologyKind{KindEdgeShuffle, KindShuffle,
		KindEdgeTypeAware}

	for i, d := range descs {
		if d.Kind != expectedKinds[i] {
			t.Error("Unexpected descriptor order at", i, ":", d.Kind)
			return
		}
	}

	if err := vc.PersistAll(); err != nil {
		t.Error(err)
		return
	}

	if len(store.descs) != 3 {
		t.Error("Unexpected number of stored views:", len(store.descs))
		return
	}

	// A fresh cache over the same store serves the persisted views

	vc2 := newTestViewCache(store, w)

	et, err := vc2.GetOrBuildEdgeShuffle(TransposeNone, EdgeSortByDestID)
	if err != nil {
		t.Error(err)
		return
	}

	if et.EdgeSortState() != EdgeSortByDestID {
		t.Error("Unexpected loaded view state")
		return
	}

	r, err := et.FindAllEdges(3, 2)
	if err != nil {
		t.Error(err)
		return
	}

	if r.Size() != 1 {
		t.Error("Unexpected loaded view content")
		return
	}

	ta, err := vc2.GetOrBuildEdgeTypeAware(TransposeNone)
	if err != nil {
		t.Error(err)
		return
	}

	indexA, _ := ta.TypeMap().IndexOfType(10)

	if ta.OutEdgesOfType(0, indexA).Size() != 1 {
		t.Error("Unexpected loaded type aware view")
		return
	}
}

func TestViewCacheLoadAll(t *testing.T) {
	w := parallel.NewWorkers(4)
	defer w.Close()

	store := &testViewStore{}

	vc := newTestViewCache(store, w)

	if _, err := vc.GetOrBuildEdgeShuffle(TransposeNone, EdgeSortByDestID); err != nil {
		t.Error(err)
		return
	}
	if _, err := vc.GetOrBuildShuffle(TransposeNone, NodeSortByDegree, EdgeSortAny); err != nil {
		t.Error(err)
		return
	}
	if _, err := vc.GetOrBuildEdgeTypeAware(TransposeNone); err != nil {
		t.Error(err)
		return
	}

	if err := vc.PersistAllTo(store); err != nil {
		t.Error(err)
		return
	}

	// A fresh cache materializes every stored view eagerly

	vc2 := newTestViewCache(store, w)

	if err := vc2.LoadAll(store); err != nil {
		t.Error(err)
		return
	}

	if len(vc2.edgeShuffTopos) != 1 || len(vc2.fullShuffTopos) != 1 ||
		len(vc2.edgeTypeAwareTopos) != 1 {

		t.Error("Unexpected cache state after load:",
			len(vc2.edgeShuffTopos), len(vc2.fullShuffTopos),
			len(vc2.edgeTypeAwareTopos))
		return
	}

	if !vc2.fullShuffTopos[0].HasNodesSortedBy(NodeSortByDegree) {
		t.Error("Unexpected loaded shuffle view state")
		return
	}

	// Loading again skips the already cached views

	if err := vc2.LoadAll(store); err != nil {
		t.Error(err)
		return
	}

	if len(vc2.edgeShuffTopos) != 1 || len(vc2.fullShuffTopos) != 1 ||
		len(vc2.edgeTypeAwareTopos) != 1 {

		t.Error("Loaded views should have been skipped")
		return
	}

	// Loading without a store must fail

	err := vc2.LoadAll(nil)

	if ge, ok := err.(*util.GraphError); !ok || ge.Type != util.ErrInvalidArgument {
		t.Error("Expected an invalid argument error:", err)
		return
	}
}

func TestViewCacheFormatMismatch(t *testing.T) {
	w := parallel.NewWorkers(2)
	defer w.Close()

	// A stored view whose dimensions disagree with the graph must be
	// rejected when it is materialized

	store := &testViewStore{[]*Descriptor{{
		Kind:            KindEdgeShuffle,
		Tpose:           TransposeNone,
		EdgeSort:        EdgeSortByDestID,
		NodeSort:        NodeSortAny,
		AdjIndices:      []uint64{1},
		Dests:           []Node{0},
		EdgePropIndices: []PropertyIndex{0},
	}}}

	vc := newTestViewCache(store, w)

	_, err := vc.GetOrBuildEdgeShuffle(TransposeNone, EdgeSortByDestID)

	if ge, ok := err.(*util.GraphError); !ok || ge.Type != util.ErrFormatMismatch {
		t.Error("Expected a format mismatch error:", err)
		return
	}

	// The cache is left unchanged on failure

	if len(vc.edgeShuffTopos) != 0 {
		t.Error("Unexpected cache state after a failed load")
		return
	}
}
