// Package ecpool supplements the CRUSH spec's named-but-undetailed
// "raid4" rule type (spec §3 Rule) with a concrete erasure-coded pool
// helper: given a profile of (data, parity) shards, it validates that a
// rule's indep choose/chooseleaf step requests exactly data+parity
// slots, and it encodes/reconstructs a buffer across precisely the
// device slots a Selector.MapPG call returned — gaps (crush.NoDevice)
// map directly onto missing shards, which Reconstruct tolerates up to
// `parity` of.
//
// Grounded on the teacher's own erasure-coding dependency
// (github.com/klauspost/reedsolomon, used in ec/putjogger.go and
// ec/getjogger.go to encode/reconstruct object chunks), reused here for
// its original purpose but against CRUSH-selected device slots rather
// than on-disk file slices.
/*
 * Copyright (c) 2018-2026, NVIDIA CORPORATION. All rights reserved.
 */
package ecpool

import (
	"fmt"

	"github.com/klauspost/reedsolomon"

	"github.com/isabella232/libcrush/crush"
)

// Profile describes an erasure-coded pool's shard layout.
type Profile struct {
	Data   int // number of data shards
	Parity int // number of parity shards
}

func (p Profile) Total() int { return p.Data + p.Parity }

// Validate checks that an indep choose/chooseleaf step in rule targets
// exactly p.Total() slots, per spec §3's raid4 rule type.
func (p Profile) Validate(rule *crush.Rule) error {
	if rule.Type != crush.RuleTypeErasure {
		return fmt.Errorf("ecpool: rule %q is not a raid4 rule", rule.Name)
	}
	for _, step := range rule.Steps {
		if step.Op != crush.OpChooseIndep && step.Op != crush.OpChooseLeafIndep {
			continue
		}
		n := int(step.Arg1)
		if n > 0 && n != p.Total() {
			return fmt.Errorf("ecpool: rule %q requests %d slots, profile wants %d (%d data + %d parity)",
				rule.Name, n, p.Total(), p.Data, p.Parity)
		}
	}
	return nil
}

// Pool encodes/reconstructs data across the device slots a placement
// decision named.
type Pool struct {
	profile Profile
	enc     reedsolomon.Encoder
}

func NewPool(profile Profile) (*Pool, error) {
	enc, err := reedsolomon.New(profile.Data, profile.Parity)
	if err != nil {
		return nil, fmt.Errorf("ecpool: %w", err)
	}
	return &Pool{profile: profile, enc: enc}, nil
}

// Split partitions data into profile.Data shards and computes
// profile.Parity parity shards, ready to be written one-per-device to
// the non-gap slots of a MapPG result.
func (p *Pool) Split(data []byte) ([][]byte, error) {
	shards, err := p.enc.Split(data)
	if err != nil {
		return nil, err
	}
	if err := p.enc.Encode(shards); err != nil {
		return nil, err
	}
	return shards, nil
}

// Reconstruct fills in missing shards (nil entries, i.e. slots whose
// MapPG output was crush.NoDevice) given at least profile.Data
// surviving shards, then joins the repaired data shards back into a
// buffer of length size.
func (p *Pool) Reconstruct(shards [][]byte, size int) ([]byte, error) {
	if err := p.enc.Reconstruct(shards); err != nil {
		return nil, err
	}
	out := make([]byte, 0, size)
	for i := 0; i < p.profile.Data && len(out) < size; i++ {
		out = append(out, shards[i]...)
	}
	if len(out) > size {
		out = out[:size]
	}
	return out, nil
}

// ShardsForSlots arranges shards so that shard i lands at the position
// of the i-th non-gap slot in slots, and every gap slot's shard is nil
// — the exact input Reconstruct expects after a lossy placement.
func ShardsForSlots(shards [][]byte, slots []int32) [][]byte {
	out := make([][]byte, len(slots))
	si := 0
	for i, slot := range slots {
		if slot == crush.NoDevice {
			continue
		}
		if si < len(shards) {
			out[i] = shards[si]
			si++
		}
	}
	return out
}
