// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package matrix provides the 2-D float64 matrix used by densenet.
//
// Element-wise operations broadcast a 1-row or 1-column operand across the
// other. Operations on incompatible shapes panic with a *ShapeError. The
// model and layer APIs recover that panic and return it as an error.
package matrix

import "github.com/born-ml/densenet/internal/matrix"

// Matrix is a dense row-major matrix.
type Matrix = matrix.Matrix

// Shape is a (rows, cols) pair.
type Shape = matrix.Shape

// Position locates one element.
type Position = matrix.Position

// ShapeError reports incompatible operand shapes.
type ShapeError = matrix.ShapeError

// ErrShape is matched by every *ShapeError via errors.Is.
var ErrShape = matrix.ErrShape

// New creates a zero-filled rows x cols matrix.
func New(rows, cols int) *Matrix { return matrix.New(rows, cols) }

// Fill creates a matrix with every element set to value.
func Fill(shape Shape, value float64) *Matrix { return matrix.Fill(shape, value) }

// FromRows creates a matrix from a rectangular slice of rows.
func FromRows(rows [][]float64) (*Matrix, error) { return matrix.FromRows(rows) }

// Column creates an n x 1 matrix.
func Column(values []float64) *Matrix { return matrix.Column(values) }

// Identity creates an n x n identity matrix.
func Identity(n int) *Matrix { return matrix.Identity(n) }

// Dot returns the matrix product a·b.
func Dot(a, b *Matrix) *Matrix { return matrix.Dot(a, b) }
