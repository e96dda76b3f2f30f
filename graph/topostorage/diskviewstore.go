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
	"bytes"
	"fmt"
	"io/ioutil"
	"os"
	"path"
	"sort"
	"strconv"
	"strings"

	"github.com/krotik/common/datautil"
	"github.com/krotik/common/fileutil"

	"github.com/krotik/partgraph/graph/topo"
	"github.com/krotik/partgraph/graph/util"
)

/*
FilenameViewDB is the filename for the view index file
*/
var FilenameViewDB = "views.pm"

/*
DiskViewStore data structure
*/
type DiskViewStore struct {
	name     string                        // Name of the view store (storage directory)
	readonly bool                          // Flag for readonly mode
	viewDB   *datautil.PersistentStringMap // Index mapping tag keys to view files
}

/*
NewDiskViewStore creates a new DiskViewStore instance. The given name is
used as storage directory and created if it does not exist.
*/
func NewDiskViewStore(name string, readonly bool) (*DiskViewStore, error) {
	dvs := &DiskViewStore{name, readonly, nil}

	// Load the view store if the storage directory already exists if not try to create it

	if res, _ := fileutil.PathExists(name); !res {
		if err := os.Mkdir(name, 0770); err != nil {
			return nil, &util.GraphError{Type: util.ErrInvalidArgument,
				Detail: err.Error()}
		}

		viewDB, err := datautil.NewPersistentStringMap(path.Join(name, FilenameViewDB))
		if err != nil {
			return nil, &util.GraphError{Type: util.ErrInvalidArgument,
				Detail: err.Error()}
		}

		dvs.viewDB = viewDB

	} else {

		viewDB, err := datautil.LoadPersistentStringMap(path.Join(name, FilenameViewDB))
		if err != nil {
			return nil, &util.GraphError{Type: util.ErrFormatMismatch,
				Detail: err.Error()}
		}

		dvs.viewDB = viewDB
	}

	return dvs, nil
}

/*
Name returns the name of the DiskViewStore instance.
*/
func (dvs *DiskViewStore) Name() string {
	return dvs.name
}

/*
StoreTopology persists the given descriptor. An existing view with the
same kind and tags is replaced.
*/
func (dvs *DiskViewStore) StoreTopology(desc *topo.Descriptor) error {

	if dvs.readonly {
		return &util.GraphError{Type: util.ErrInvalidArgument,
			Detail: "Cannot write to readonly view store"}
	}

	key := desc.TagKey()
	filename := fmt.Sprintf("topo_%v.pgt", key)

	buf := &bytes.Buffer{}

	if err := WriteDescriptor(buf, desc); err != nil {
		return err
	}

	if err := ioutil.WriteFile(path.Join(dvs.name, filename),
		buf.Bytes(), 0660); err != nil {

		return err
	}

	dvs.viewDB.Data[key] = filename

	return dvs.viewDB.Flush()
}

/*
LoadTopology returns a stored descriptor matching the given shadow
descriptor or nil if no view matches.
*/
func (dvs *DiskViewStore) LoadTopology(shadow *topo.Descriptor) (*topo.Descriptor, error) {

	// Sort keys so wildcard lookups are deterministic

	var keys []string
	for k := range dvs.viewDB.Data {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		tags, err := parseTagKey(k)
		if err != nil {
			return nil, err
		}

		if !tags.MatchesShadow(shadow) {
			continue
		}

		// An indexed view whose file cannot be read is an internal
		// inconsistency of the store

		data, err := ioutil.ReadFile(path.Join(dvs.name, dvs.viewDB.Data[k]))
		if err != nil {
			return nil, &util.GraphError{Type: util.ErrAssertionFailed,
				Detail: err.Error()}
		}

		return ReadDescriptor(bytes.NewReader(data))
	}

	return nil, nil
}

/*
StoredTopologies returns the descriptors of all persisted views.
*/
func (dvs *DiskViewStore) StoredTopologies() ([]*topo.Descriptor, error) {
	var keys []string
	for k := range dvs.viewDB.Data {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	ret := make([]*topo.Descriptor, 0, len(keys))

	for _, k := range keys {
		data, err := ioutil.ReadFile(path.Join(dvs.name, dvs.viewDB.Data[k]))
		if err != nil {
			return nil, &util.GraphError{Type: util.ErrAssertionFailed,
				Detail: err.Error()}
		}

		desc, err := ReadDescriptor(bytes.NewReader(data))
		if err != nil {
			return nil, err
		}

		ret = append(ret, desc)
	}

	return ret, nil
}

/*
Close closes the view store.
*/
func (dvs *DiskViewStore) Close() error {
	if dvs.readonly {
		return nil
	}

	return dvs.viewDB.Flush()
}

/*
parseTagKey converts an index key back into a tags-only descriptor.
*/
func parseTagKey(key string) (*topo.Descriptor, error) {
	parts := strings.Split(key, "-")

	if len(parts) != 4 {
		return nil, &util.GraphError{Type: util.ErrFormatMismatch,
			Detail: fmt.Sprintf("Invalid view index key: %v", key)}
	}

	vals := make([]int, 4)
	for i, p := range parts {
		v, err := strconv.Atoi(p)
		if err != nil {
			return nil, &util.GraphError{Type: util.ErrFormatMismatch,
				Detail: fmt.Sprintf("Invalid view index key: %v", key)}
		}
		vals[i] = v
	}

	return topo.MakeShadowDescriptor(topo.TopologyKind(vals[0]),
		topo.TransposeState(vals[1]), topo.EdgeSortState(vals[2]),
		topo.NodeSortState(vals[3])), nil
}
