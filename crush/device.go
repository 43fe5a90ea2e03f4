/*
 * Copyright (c) 2018-2026, NVIDIA CORPORATION. All rights reserved.
 */
package crush

import "github.com/isabella232/libcrush/cos"

// NoDevice is the sentinel written into an "indep" result slot when
// selection exhausts its retry budget for that slot (spec §4.4, §7
// SelectionExhausted).
const NoDevice int32 = -1

// Device is a leaf storage endpoint. Device ids are dense from 0 up to
// max_devices-1; gaps are allowed and represent absent devices (spec §3).
type Device struct {
	ID      int32
	Name    string
	Offload cos.Fixed16_16 // [0, FixedScale]; probability of rejection on selection
}

// IsDown reports whether the device is fully offloaded (offload == 1.0).
func (d *Device) IsDown() bool { return d.Offload >= cos.FixedScale }

// Type names a level of the hierarchy. Type 0 is reserved for devices
// and is never registered explicitly.
type Type struct {
	ID   int32
	Name string
}

const DeviceTypeID int32 = 0
