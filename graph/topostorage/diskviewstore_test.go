/*
 * PartGraph
 *
 * Copyright 2020 Matthias Ladkau. All rights reserved.
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

package topostorage

import (
	"flag"
	"fmt"
	"os"
	"testing"

	"github.com/krotik/common/fileutil"

	"github.com/krotik/partgraph/graph/topo"
	"github.com/krotik/partgraph/graph/util"
)

const viewDBDir = "viewstoretest"

func TestMain(m *testing.M) {
	flag.Parse()

	// Setup

	if res, _ := fileutil.PathExists(viewDBDir); res {
		os.RemoveAll(viewDBDir)
	}

	if err := os.Mkdir(viewDBDir, 0770); err != nil {
		fmt.Print("Could not create test directory:", err.Error())
		os.Exit(1)
	}

	// Run the tests

	res := m.Run()

	// Teardown

	if err := os.RemoveAll(viewDBDir); err != nil {
		fmt.Print("Could not remove test directory:", err.Error())
	}

	os.Exit(res)
}

func TestDiskViewStore(t *testing.T) {
	dvs, err := NewDiskViewStore(viewDBDir+"/store1", false)
	if err != nil {
		t.Error(err)
		return
	}

	if dvs.Name() != viewDBDir+"/store1" {
		t.Error("Unexpected name:", dvs.Name())
		return
	}

	// A lookup on an empty store is a miss

	shadow := topo.MakeShadowDescriptor(topo.KindEdgeShuffle,
		topo.TransposeNone, topo.EdgeSortByDestID, topo.NodeSortAny)

	desc, err := dvs.LoadTopology(shadow)
	if err != nil || desc != nil {
		t.Error("Expected a miss:", desc, err)
		return
	}

	stored := newTestDescriptor()

	if err := dvs.StoreTopology(stored); err != nil {
		t.Error(err)
		return
	}

	// An exact lookup returns the stored view

	shadow = topo.MakeShadowDescriptor(topo.KindEdgeTypeAware,
		topo.TransposeYes, topo.EdgeSortByType, topo.NodeSortAny)

	desc, err = dvs.LoadTopology(shadow)
	if err != nil {
		t.Error(err)
		return
	}

	if desc == nil || desc.Kind != stored.Kind || len(desc.Dests) != 5 ||
		len(desc.TypeIDs) != 2 {

		t.Error("Unexpected loaded descriptor:", desc)
		return
	}

	// A wildcard lookup matches as well

	shadow = topo.MakeShadowDescriptor(topo.KindEdgeTypeAware,
		topo.TransposeAny, topo.EdgeSortAny, topo.NodeSortAny)

	desc, err = dvs.LoadTopology(shadow)
	if err != nil || desc == nil {
		t.Error("Expected a wildcard hit:", err)
		return
	}

	// A lookup for a different kind is a miss

	shadow = topo.MakeShadowDescriptor(topo.KindShuffle,
		topo.TransposeAny, topo.EdgeSortAny, topo.NodeSortAny)

	desc, err = dvs.LoadTopology(shadow)
	if err != nil || desc != nil {
		t.Error("Expected a miss:", desc, err)
		return
	}

	if err := dvs.Close(); err != nil {
		t.Error(err)
		return
	}

	// Reopening the store must serve the persisted view

	dvs2, err := NewDiskViewStore(viewDBDir+"/store1", true)
	if err != nil {
		t.Error(err)
		return
	}

	shadow = topo.MakeShadowDescriptor(topo.KindEdgeTypeAware,
		topo.TransposeYes, topo.EdgeSortByType, topo.NodeSortAny)

	desc, err = dvs2.LoadTopology(shadow)
	if err != nil {
		t.Error(err)
		return
	}

	if desc == nil || desc.AdjIndices[4] != 4 {
		t.Error("Unexpected descriptor after reopen:", desc)
		return
	}

	// The readonly store must refuse writes

	err = dvs2.StoreTopology(stored)

	if ge, ok := err.(*util.GraphError); !ok || ge.Type != util.ErrInvalidArgument {
		t.Error("Expected an invalid argument error:", err)
		return
	}

	// Enumeration returns every persisted view

	descs, err := dvs2.StoredTopologies()
	if err != nil {
		t.Error(err)
		return
	}

	if len(descs) != 1 || descs[0].Kind != topo.KindEdgeTypeAware {
		t.Error("Unexpected stored views:", descs)
		return
	}
}

func TestMemoryViewStore(t *testing.T) {
	mvs := NewMemoryViewStore("memtest")

	if mvs.Name() != "memtest" {
		t.Error("Unexpected name:", mvs.Name())
		return
	}

	desc, err := mvs.LoadTopology(topo.MakeShadowDescriptor(
		topo.KindEdgeShuffle, topo.TransposeAny, topo.EdgeSortAny,
		topo.NodeSortAny))

	if err != nil || desc != nil {
		t.Error("Expected a miss:", desc, err)
		return
	}

	if err := mvs.StoreTopology(newTestDescriptor()); err != nil {
		t.Error(err)
		return
	}

	desc, err = mvs.LoadTopology(topo.MakeShadowDescriptor(
		topo.KindEdgeTypeAware, topo.TransposeYes, topo.EdgeSortByType,
		topo.NodeSortAny))

	if err != nil || desc == nil {
		t.Error("Expected a hit:", err)
		return
	}

	descs, err := mvs.StoredTopologies()
	if err != nil || len(descs) != 1 {
		t.Error("Unexpected stored views:", descs, err)
		return
	}

	if err := mvs.Close(); err != nil {
		t.Error(err)
		return
	}
}
