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
Package graph contains the main API of a graph partition.

Manager API

The main API is provided by a Manager object which can be created with
the NewManager() constructor function. The manager owns the base
topology of the partition, the node and edge type columns, a cache of
derived topology views and a cache of unloaded property columns.

Topology views

Derived topology views (transposed, edge sorted, node sorted and edge
type aware adjacency) are requested through the manager and served by
the view cache which memoizes construction results and persists them
through a view store. View construction runs on the parallel worker
set of the manager.

Properties

Property columns are chunked primitive arrays addressed by a node or
edge scope and a column name. The manager tracks which columns are
resident and moves unloaded columns into a capacity bounded property
cache from where a later load can retrieve them without rebuilding.
*/
package graph

import (
	"github.com/krotik/partgraph/graph/topo"
	"github.com/krotik/partgraph/graph/util"
	"github.com/krotik/partgraph/parallel"
)

/*
Manager data structure
*/
type Manager struct {
	workers   *parallel.Workers              // Worker set for view construction
	nodeTypes []topo.EntityTypeID            // Node types by property index
	edgeTypes []topo.EntityTypeID            // Edge types by property index
	viewCache *topo.ViewCache                // Cache of derived topology views
	propCache *PropertyCache                 // Cache of unloaded property columns
	backing   map[PropertyKey]*ChunkedColumn // Full property catalog
	resident  map[PropertyKey]*ChunkedColumn // Currently loaded columns
}

/*
NewManager creates a new Manager instance for a graph partition. The
type columns must have one entry per node and edge property row of the
base topology. The view store and the property cache may be nil in
which case views are not persisted and unloaded columns are dropped.
*/
func NewManager(base *topo.Topology, nodeTypes []topo.EntityTypeID,
	edgeTypes []topo.EntityTypeID, store topo.ViewStore,
	propCache *PropertyCache, workers *parallel.Workers) (*Manager, error) {

	if uint64(len(nodeTypes)) != base.NumNodes() ||
		uint64(len(edgeTypes)) != base.NumEdges() {

		return nil, &util.GraphError{Type: util.ErrInvalidArgument,
			Detail: "Type columns do not match the topology dimensions"}
	}

	gm := &Manager{workers, nodeTypes, edgeTypes, nil, propCache,
		make(map[PropertyKey]*ChunkedColumn),
		make(map[PropertyKey]*ChunkedColumn)}

	gm.viewCache = topo.NewViewCache(base, gm, gm, store, workers)

	return gm, nil
}
