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

	"github.com/krotik/partgraph/graph/util"
)

/*
ChunkedColumn is a property column stored as a sequence of primitive
array chunks. Chunks are opaque to the topology core; supported chunk
types are []uint64, []uint32, []int64, []float64, []bool and []string.
*/
type ChunkedColumn struct {
	chunks []interface{}
}

/*
NewChunkedColumn creates a new empty chunked column.
*/
func NewChunkedColumn() *ChunkedColumn {
	return &ChunkedColumn{nil}
}

/*
AppendChunk appends a primitive array chunk to this column.
*/
func (c *ChunkedColumn) AppendChunk(chunk interface{}) error {
	if _, _, err := chunkDimensions(chunk); err != nil {
		return err
	}

	c.chunks = append(c.chunks, chunk)

	return nil
}

/*
NumChunks returns the number of chunks of this column.
*/
func (c *ChunkedColumn) NumChunks() int {
	return len(c.chunks)
}

/*
Chunk returns the chunk with the given index.
*/
func (c *ChunkedColumn) Chunk(index int) interface{} {
	return c.chunks[index]
}

/*
NumRows returns the total number of rows over all chunks.
*/
func (c *ChunkedColumn) NumRows() uint64 {
	var ret uint64

	for _, chunk := range c.chunks {
		rows, _, _ := chunkDimensions(chunk)
		ret += rows
	}

	return ret
}

/*
ByteSize returns the total payload size of this column in bytes.
*/
func (c *ChunkedColumn) ByteSize() uint64 {
	var ret uint64

	for _, chunk := range c.chunks {
		_, bytes, _ := chunkDimensions(chunk)
		ret += bytes
	}

	return ret
}

/*
chunkDimensions returns row count and byte size of a primitive array
chunk.
*/
func chunkDimensions(chunk interface{}) (uint64, uint64, error) {

	switch a := chunk.(type) {
	case []uint64:
		return uint64(len(a)), uint64(len(a)) * 8, nil
	case []int64:
		return uint64(len(a)), uint64(len(a)) * 8, nil
	case []float64:
		return uint64(len(a)), uint64(len(a)) * 8, nil
	case []uint32:
		return uint64(len(a)), uint64(len(a)) * 4, nil
	case []bool:
		return uint64(len(a)), uint64(len(a)), nil
	case []string:
		var bytes uint64
		for _, s := range a {
			bytes += uint64(len(s))
		}
		return uint64(len(a)), bytes, nil
	}

	return 0, 0, &util.GraphError{Type: util.ErrInvalidArgument,
		Detail: fmt.Sprintf("Unsupported chunk type: %T", chunk)}
}

/*
ColumnByteSize is a size supplier for the property cache byte policy.
*/
func ColumnByteSize(v interface{}) uint64 {
	if col, ok := v.(*ChunkedColumn); ok {
		return col.ByteSize()
	}

	return 0
}
