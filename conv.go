// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/prj

package prj

import (
	"fmt"
	"math"

	"golang.org/x/exp/constraints"
)

const (
	maxInt32  = int(^uint32(0) >> 1)
	maxUint32 = uint64(^uint32(0))

	// positionScale is the divisor of instance positions, bounding boxes and
	// track coordinates.
	positionScale = 1024
	// rotationScale is the divisor of instance rotations.
	rotationScale = 4096
	// baseHeightScale is the divisor of terrain block base heights.
	baseHeightScale = 1024
	// sampleScale is the divisor of offset table samples.
	sampleScale = 8
)

// u32FromInt converts an int to a uint32.
func u32FromInt(n int) (uint32, error) {
	if n < 0 || uint64(n) > maxUint32 {
		return 0, ErrSizeOverflow
	}

	// #nosec G115 -- bounds checked above.
	return uint32(n), nil
}

// clamp limits v to [lo, hi].
func clamp[T constraints.Integer](v, lo, hi T) T {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}

	return v
}

func positionFromU32(v uint32) float64 {
	return float64(v) / positionScale
}

func positionToU32(v float64) (uint32, error) {
	return fixedToU32(v, positionScale)
}

func rotationFromU32(v uint32) float64 {
	return float64(v) / rotationScale
}

func rotationToU32(v float64) (uint32, error) {
	return fixedToU32(v, rotationScale)
}

// coordFromI32 converts signed bounding box and track coordinates.
func coordFromI32(v int32) float64 {
	return float64(v) / positionScale
}

func coordToI32(v float64) (int32, error) {
	f := v * positionScale
	if math.IsNaN(f) || f < math.MinInt32 || f > math.MaxInt32 {
		return 0, fmt.Errorf("%w: %v does not fit a signed fixed-point field", ErrSizeOverflow, v)
	}

	return int32(f), nil
}

// fixedToU32 scales v into an unsigned fixed-point field.
func fixedToU32(v, scale float64) (uint32, error) {
	f := v * scale
	if math.IsNaN(f) || f < 0 || f > math.MaxUint32 {
		return 0, fmt.Errorf("%w: %v does not fit an unsigned fixed-point field", ErrSizeOverflow, v)
	}

	return uint32(f), nil
}

// heightFromTerrainPair sums a block base height and one offset table sample.
// The two are scaled independently and never share a fixed-point field.
func heightFromTerrainPair(baseHeight int32, sample uint8) float32 {
	return float32(baseHeight)/baseHeightScale + float32(sample)/sampleScale
}
