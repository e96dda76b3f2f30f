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
	"sort"

	"github.com/krotik/partgraph/graph/topo"
)

/*
MemoryViewStore data structure
*/
type MemoryViewStore struct {
	name  string                      // Name of the view store
	descs map[string]*topo.Descriptor // Stored descriptors by tag key
}

/*
NewMemoryViewStore creates a new memory-only view store.
*/
func NewMemoryViewStore(name string) *MemoryViewStore {
	return &MemoryViewStore{name, make(map[string]*topo.Descriptor)}
}

/*
Name returns the name of the MemoryViewStore instance.
*/
func (mvs *MemoryViewStore) Name() string {
	return mvs.name
}

/*
StoreTopology persists the given descriptor. An existing view with the
same kind and tags is replaced.
*/
func (mvs *MemoryViewStore) StoreTopology(desc *topo.Descriptor) error {
	mvs.descs[desc.TagKey()] = desc
	return nil
}

/*
LoadTopology returns a stored descriptor matching the given shadow
descriptor or nil if no view matches.
*/
func (mvs *MemoryViewStore) LoadTopology(shadow *topo.Descriptor) (*topo.Descriptor, error) {

	// Sort keys so wildcard lookups are deterministic

	var keys []string
	for k := range mvs.descs {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		if d := mvs.descs[k]; d.MatchesShadow(shadow) {
			return d, nil
		}
	}

	return nil, nil
}

/*
StoredTopologies returns the descriptors of all persisted views.
*/
func (mvs *MemoryViewStore) StoredTopologies() ([]*topo.Descriptor, error) {
	var keys []string
	for k := range mvs.descs {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	ret := make([]*topo.Descriptor, 0, len(keys))
	for _, k := range keys {
		ret = append(ret, mvs.descs[k])
	}

	return ret, nil
}

/*
Close closes the view store.
*/
func (mvs *MemoryViewStore) Close() error {
	return nil
}
