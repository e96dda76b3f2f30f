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
Package util contains utility classes for the graph topology core.

GraphError

Models a topology or property related error. Low-level errors should be
wrapped in a GraphError before they are returned to a client. The Type
field holds one of the sentinel error values of this package and can be
used for equality checks.
*/
package util

import (
	"errors"
	"fmt"
)

/*
GraphError is a graph related error
*/
type GraphError struct {
	Type   error  // Error type (to be used for equal checks)
	Detail string // Details of this error
}

/*
Error returns a human-readable string representation of this error.
*/
func (ge *GraphError) Error() string {
	if ge.Detail != "" {
		return fmt.Sprintf("GraphError: %v (%v)", ge.Type, ge.Detail)
	}

	return fmt.Sprintf("GraphError: %v", ge.Type)
}

/*
Topology and property related error types
*/
var (
	ErrInvalidArgument   = errors.New("Invalid argument")
	ErrPropertyNotFound  = errors.New("Property not found")
	ErrAssertionFailed   = errors.New("Internal invariant violated")
	ErrResourceExhausted = errors.New("Resources exhausted in parallel phase")
	ErrFormatMismatch    = errors.New("Persisted topology does not match")
	ErrNotImplemented    = errors.New("Operation not implemented")
)
