// Package cos provides common low-level types used across the placement
// engine: fixed-point weights, little-endian byte packing, and the typed
// error family every other package returns.
/*
 * Copyright (c) 2018-2026, NVIDIA CORPORATION. All rights reserved.
 */
package cos

import (
	"fmt"
	"strconv"
)

// Fixed16_16 is a 16.16 fixed-point value: unit == 1/65536. Weights and
// offloads are always carried in this representation so that arithmetic
// is reproducible across hosts regardless of floating-point environment.
type Fixed16_16 int64

const FixedScale = 1 << 16

// FixedFromFloat rounds x*65536 to the nearest integer, per spec: "Text
// input accepts decimal floats and converts via round(x * 65536)".
func FixedFromFloat(x float64) Fixed16_16 {
	if x >= 0 {
		return Fixed16_16(x*FixedScale + 0.5)
	}
	return Fixed16_16(x*FixedScale - 0.5)
}

// ParseFixed parses a decimal string (e.g. "0.500") into a Fixed16_16.
func ParseFixed(s string) (Fixed16_16, error) {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid fixed-point literal %q: %w", s, err)
	}
	return FixedFromFloat(f), nil
}

func (f Fixed16_16) Float() float64 { return float64(f) / FixedScale }

func (f Fixed16_16) String() string { return strconv.FormatFloat(f.Float(), 'f', 3, 64) }

// Uint32 returns the raw 16.16 bits as stored on the wire.
func (f Fixed16_16) Uint32() uint32 { return uint32(f) }

func FixedFromUint32(v uint32) Fixed16_16 { return Fixed16_16(int32(v)) }

// InUnitInterval reports whether f lies within [0, 1], the valid range
// for an offload probability.
func (f Fixed16_16) InUnitInterval() bool { return f >= 0 && f <= FixedScale }
