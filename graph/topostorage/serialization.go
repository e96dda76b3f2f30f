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
Package topostorage contains storage objects for topology views.

There are two main storage objects: DiskViewStore which persists
topology descriptors on disk and MemoryViewStore which provides
memory-only storage for tests and temporary graphs.

Persisted descriptors use a fixed binary format: a magic number, a
format version, the kind and state tags, the array lengths and the raw
arrays. All integers are little endian; adjacency offsets and property
indices are 64 bit, destinations 32 bit and type IDs 16 bit wide.
*/
package topostorage

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/krotik/partgraph/graph/topo"
	"github.com/krotik/partgraph/graph/util"
)

/*
ViewFileMagic is the magic number of persisted topology view files.
*/
const ViewFileMagic = uint32(0x50475430)

/*
ViewFileVersion is the current format version of persisted topology
view files.
*/
const ViewFileVersion = uint16(1)

/*
WriteDescriptor writes the binary form of a topology descriptor.
*/
func WriteDescriptor(w io.Writer, desc *topo.Descriptor) error {
	header := []interface{}{
		ViewFileMagic,
		ViewFileVersion,
		uint8(desc.Kind),
		uint8(desc.Tpose),
		uint8(desc.EdgeSort),
		uint8(desc.NodeSort),
		uint64(len(desc.AdjIndices)),
		uint64(len(desc.Dests)),
		uint64(len(desc.EdgePropIndices)),
		uint64(len(desc.NodePropIndices)),
		uint64(len(desc.TypeIDs)),
	}

	for _, v := range header {
		if err := binary.Write(w, binary.LittleEndian, v); err != nil {
			return err
		}
	}

	arrays := []interface{}{
		desc.AdjIndices,
		desc.Dests,
		desc.EdgePropIndices,
		desc.NodePropIndices,
		desc.TypeIDs,
	}

	for _, v := range arrays {
		if err := binary.Write(w, binary.LittleEndian, v); err != nil {
			return err
		}
	}

	return nil
}

/*
ReadDescriptor reads the binary form of a topology descriptor.
*/
func ReadDescriptor(r io.Reader) (*topo.Descriptor, error) {
	var magic uint32
	var version uint16
	var kind, tpose, esort, nsort uint8
	var lenAdj, lenDests, lenEProps, lenNProps, lenTypes uint64

	header := []interface{}{&magic, &version, &kind, &tpose, &esort, &nsort,
		&lenAdj, &lenDests, &lenEProps, &lenNProps, &lenTypes}

	for _, v := range header {
		if err := binary.Read(r, binary.LittleEndian, v); err != nil {
			return nil, err
		}
	}

	if magic != ViewFileMagic {
		return nil, &util.GraphError{Type: util.ErrFormatMismatch,
			Detail: "Not a topology view file"}
	}

	if version != ViewFileVersion {
		return nil, &util.GraphError{Type: util.ErrFormatMismatch,
			Detail: fmt.Sprintf("Unknown topology view format version: %v", version)}
	}

	desc := &topo.Descriptor{
		Kind:     topo.TopologyKind(kind),
		Tpose:    topo.TransposeState(tpose),
		EdgeSort: topo.EdgeSortState(esort),
		NodeSort: topo.NodeSortState(nsort),
	}

	if lenAdj > 0 {
		desc.AdjIndices = make([]uint64, lenAdj)
	}
	if lenDests > 0 {
		desc.Dests = make([]topo.Node, lenDests)
	}
	if lenEProps > 0 {
		desc.EdgePropIndices = make([]topo.PropertyIndex, lenEProps)
	}
	if lenNProps > 0 {
		desc.NodePropIndices = make([]topo.PropertyIndex, lenNProps)
	}
	if lenTypes > 0 {
		desc.TypeIDs = make([]topo.EntityTypeID, lenTypes)
	}

	arrays := []interface{}{desc.AdjIndices, desc.Dests,
		desc.EdgePropIndices, desc.NodePropIndices, desc.TypeIDs}

	for _, v := range arrays {
		if err := binary.Read(r, binary.LittleEndian, v); err != nil {
			return nil, err
		}
	}

	return desc, nil
}
