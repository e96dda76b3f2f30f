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
	"fmt"
	"sort"

	"github.com/krotik/partgraph/graph/util"
)

/*
AddProperty adds a new property column to the partition. The column
becomes resident immediately.
*/
func (gm *Manager) AddProperty(scope NodeEdgeScope, name string,
	col *ChunkedColumn) error {

	key := PropertyKey{scope, name}

	if _, ok := gm.backing[key]; ok {
		return &util.GraphError{Type: util.ErrInvalidArgument,
			Detail: fmt.Sprintf("Property exists already: %v", name)}
	}

	gm.backing[key] = col
	gm.resident[key] = col

	return nil
}

/*
UpsertProperty adds a new property column or replaces an existing one.
The column becomes resident and any cached copy is overwritten.
*/
func (gm *Manager) UpsertProperty(scope NodeEdgeScope, name string,
	col *ChunkedColumn) error {

	key := PropertyKey{scope, name}

	gm.backing[key] = col
	gm.resident[key] = col

	// Overwrite a stale cached copy so a later load cannot serve it

	if gm.propCache != nil && gm.propCache.Contains(key) {
		gm.propCache.Insert(key, col)
	}

	return nil
}

/*
RemoveProperty removes a property column from the partition.
*/
func (gm *Manager) RemoveProperty(scope NodeEdgeScope, name string) error {
	key := PropertyKey{scope, name}

	if _, ok := gm.backing[key]; !ok {
		return &util.GraphError{Type: util.ErrPropertyNotFound,
			Detail: name}
	}

	delete(gm.backing, key)
	delete(gm.resident, key)

	return nil
}

/*
LoadProperty makes a catalogued property column resident again. The
column is served from the property cache if an unloaded copy is still
cached.
*/
func (gm *Manager) LoadProperty(scope NodeEdgeScope, name string) error {
	key := PropertyKey{scope, name}

	if _, ok := gm.resident[key]; ok {
		return &util.GraphError{Type: util.ErrInvalidArgument,
			Detail: fmt.Sprintf("Property is already resident: %v", name)}
	}

	col, ok := gm.backing[key]
	if !ok {
		return &util.GraphError{Type: util.ErrPropertyNotFound,
			Detail: name}
	}

	if gm.propCache != nil {
		if v, ok := gm.propCache.Get(key); ok {
			col = v.(*ChunkedColumn)
		}
	}

	gm.resident[key] = col

	return nil
}

/*
UnloadProperty removes a property column from the resident set and
hands it to the property cache.
*/
func (gm *Manager) UnloadProperty(scope NodeEdgeScope, name string) error {
	key := PropertyKey{scope, name}

	col, ok := gm.resident[key]
	if !ok {
		return &util.GraphError{Type: util.ErrPropertyNotFound,
			Detail: name}
	}

	delete(gm.resident, key)

	if gm.propCache != nil {
		gm.propCache.Insert(key, col)
	}

	return nil
}

/*
GetProperty returns a resident property column.
*/
func (gm *Manager) GetProperty(scope NodeEdgeScope, name string) (*ChunkedColumn, error) {
	col, ok := gm.resident[PropertyKey{scope, name}]

	if !ok {
		return nil, &util.GraphError{Type: util.ErrPropertyNotFound,
			Detail: name}
	}

	return col, nil
}

/*
LoadedProperties returns the sorted names of all resident property
columns of a scope.
*/
func (gm *Manager) LoadedProperties(scope NodeEdgeScope) []string {
	return sortedKeys(gm.resident, scope)
}

/*
AllProperties returns the sorted names of all catalogued property
columns of a scope.
*/
func (gm *Manager) AllProperties(scope NodeEdgeScope) []string {
	return sortedKeys(gm.backing, scope)
}

/*
sortedKeys returns the sorted column names of a scope.
*/
func sortedKeys(m map[PropertyKey]*ChunkedColumn, scope NodeEdgeScope) []string {
	var ret []string

	for k := range m {
		if k.Scope == scope {
			ret = append(ret, k.Name)
		}
	}

	sort.Strings(ret)

	return ret
}

/*
PropertyCache returns the property cache of the partition.
*/
func (gm *Manager) PropertyCache() *PropertyCache {
	return gm.propCache
}
