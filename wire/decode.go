/*
 * Copyright (c) 2018-2026, NVIDIA CORPORATION. All rights reserved.
 */
package wire

import (
	"github.com/isabella232/libcrush/cos"
	"github.com/isabella232/libcrush/crush"
)

// Decode parses the canonical little-endian binary layout (spec §4.5)
// back into a finalized *crush.Map. Kind-specific precomputed tables in
// the input are consumed to preserve the byte layout and stream
// position but are not copied into the result: crush.Map.Finalize
// recomputes them deterministically from children/weights, which is
// exactly how they were produced on the encoding side, so the
// reconstructed map is semantically identical to the original (spec §8
// property 2, "decode(encode(m)) == m") except for device-id gaps: the
// offload vector carries no presence flag, so every id below
// max_devices comes back as a declared device, an absent id as a device
// with offload 0.
func Decode(data []byte) (*crush.Map, error) {
	br := cos.NewUnpacker(data)

	magic, err := br.ReadUint32()
	if err != nil {
		return nil, cos.WrapCorrupt(br.Off(), err)
	}
	if magic != Magic {
		return nil, &cos.ErrUnknownVersion{Magic: magic}
	}
	maxBuckets, err := br.ReadUint32()
	if err != nil {
		return nil, cos.WrapCorrupt(br.Off(), err)
	}
	maxRules, err := br.ReadUint32()
	if err != nil {
		return nil, cos.WrapCorrupt(br.Off(), err)
	}
	maxDevices, err := br.ReadUint32()
	if err != nil {
		return nil, cos.WrapCorrupt(br.Off(), err)
	}

	m := crush.NewMap()

	for slot := 0; slot < int(maxBuckets); slot++ {
		present, err := br.ReadUint32()
		if err != nil {
			return nil, cos.WrapCorrupt(br.Off(), err)
		}
		if present == 0 {
			continue
		}
		if err := readBucket(br, m, slotBucketID(slot)); err != nil {
			return nil, err
		}
	}

	for ri := 0; ri < int(maxRules); ri++ {
		present, err := br.ReadUint32()
		if err != nil {
			return nil, cos.WrapCorrupt(br.Off(), err)
		}
		if present == 0 {
			continue
		}
		if err := readRule(br, m); err != nil {
			return nil, err
		}
	}

	offloads := make([]cos.Fixed16_16, maxDevices)
	for i := range offloads {
		v, err := br.ReadUint32()
		if err != nil {
			return nil, cos.WrapCorrupt(br.Off(), err)
		}
		offloads[i] = cos.FixedFromUint32(v)
	}
	for i, off := range offloads {
		if err := m.AddDevice(int32(i), "", off); err != nil {
			return nil, err
		}
	}

	typeTable, err := readNameTable(br)
	if err != nil {
		return nil, err
	}
	for _, e := range typeTable {
		if err := m.SetTypeName(e.id, e.name); err != nil {
			return nil, err
		}
	}

	itemTable, err := readNameTable(br)
	if err != nil {
		return nil, err
	}
	for _, e := range itemTable {
		if err := m.SetItemName(e.id, e.name); err != nil {
			return nil, err
		}
	}

	ruleTable, err := readNameTable(br)
	if err != nil {
		return nil, err
	}
	for _, e := range ruleTable {
		if err := m.SetRuleName(e.id, e.name); err != nil {
			return nil, err
		}
	}

	if err := m.Finalize(); err != nil {
		return nil, err
	}
	return m, nil
}

func readBucket(br *cos.ByteUnpack, m *crush.Map, id int32) error {
	kind, err := br.ReadUint32()
	if err != nil {
		return cos.WrapCorrupt(br.Off(), err)
	}
	typeID, err := br.ReadUint32()
	if err != nil {
		return cos.WrapCorrupt(br.Off(), err)
	}
	if _, err := br.ReadUint32(); err != nil { // weight: informational, recomputed at Finalize
		return cos.WrapCorrupt(br.Off(), err)
	}
	size, err := br.ReadUint32()
	if err != nil {
		return cos.WrapCorrupt(br.Off(), err)
	}

	children := make([]int32, size)
	for i := range children {
		v, err := br.ReadInt32()
		if err != nil {
			return cos.WrapCorrupt(br.Off(), err)
		}
		children[i] = v
	}
	weights := make([]cos.Fixed16_16, size)
	for i := range weights {
		v, err := br.ReadUint32()
		if err != nil {
			return cos.WrapCorrupt(br.Off(), err)
		}
		weights[i] = cos.FixedFromUint32(v)
	}

	if err := skipKindTable(br, crush.Kind(kind)); err != nil {
		return err
	}

	if _, err := m.AddBucket(id, crush.Kind(kind), int32(typeID), children, weights); err != nil {
		return err
	}
	return nil
}

// skipKindTable consumes a bucket's serialized kind-specific table
// without retaining it: Finalize recomputes it from children/weights
// (see Decode's doc comment).
func skipKindTable(br *cos.ByteUnpack, kind crush.Kind) error {
	switch kind {
	case crush.KindUniform, crush.KindTree, crush.KindList, crush.KindStraw:
		n, err := br.ReadUint32()
		if err != nil {
			return cos.WrapCorrupt(br.Off(), err)
		}
		for i := uint32(0); i < n; i++ {
			if _, err := br.ReadUint32(); err != nil {
				return cos.WrapCorrupt(br.Off(), err)
			}
		}
	}
	return nil
}

func readRule(br *cos.ByteUnpack, m *crush.Map) error {
	length, err := br.ReadUint32()
	if err != nil {
		return cos.WrapCorrupt(br.Off(), err)
	}
	pool, err := br.ReadUint32()
	if err != nil {
		return cos.WrapCorrupt(br.Off(), err)
	}
	ptype, err := br.ReadUint32()
	if err != nil {
		return cos.WrapCorrupt(br.Off(), err)
	}
	minSize, err := br.ReadUint32()
	if err != nil {
		return cos.WrapCorrupt(br.Off(), err)
	}
	maxSize, err := br.ReadUint32()
	if err != nil {
		return cos.WrapCorrupt(br.Off(), err)
	}
	steps := make([]crush.Step, length)
	for i := range steps {
		op, err := br.ReadUint32()
		if err != nil {
			return cos.WrapCorrupt(br.Off(), err)
		}
		arg1, err := br.ReadInt32()
		if err != nil {
			return cos.WrapCorrupt(br.Off(), err)
		}
		arg2, err := br.ReadInt32()
		if err != nil {
			return cos.WrapCorrupt(br.Off(), err)
		}
		steps[i] = crush.Step{Op: crush.Op(op), Arg1: arg1, Arg2: arg2}
	}
	_, err = m.AddRule("", int32(pool), crush.RuleType(ptype), int32(minSize), int32(maxSize), steps)
	return err
}

func readNameTable(br *cos.ByteUnpack) ([]nameEntry, error) {
	count, err := br.ReadUint32()
	if err != nil {
		return nil, cos.WrapCorrupt(br.Off(), err)
	}
	out := make([]nameEntry, count)
	for i := range out {
		id, err := br.ReadInt32()
		if err != nil {
			return nil, cos.WrapCorrupt(br.Off(), err)
		}
		name, err := br.ReadString()
		if err != nil {
			return nil, cos.WrapCorrupt(br.Off(), err)
		}
		out[i] = nameEntry{id: id, name: name}
	}
	return out, nil
}
