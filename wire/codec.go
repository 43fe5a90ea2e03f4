/*
 * Copyright (c) 2018-2026, NVIDIA CORPORATION. All rights reserved.
 */

// Package wire implements the bit-exact binary codec for a crush.Map
// (spec §4.5): little-endian, tagged by a magic number, round-tripping
// via Encode/Decode. The packer/unpacker primitives are a direct
// generalization of the teacher's cmn/cos/bytepack.go, adapted to
// little-endian per the spec's explicit "Endianness" design note.
package wire

import (
	"github.com/isabella232/libcrush/cos"
	"github.com/isabella232/libcrush/crush"
	"github.com/isabella232/libcrush/debug"
)

// Magic identifies this codec's binary format version (spec §6:
// "versioned by a magic number; consumers MUST reject unknown magics").
const Magic uint32 = 0x43525531 // "CRU1"

// Encode serializes a finalized map to the canonical little-endian
// binary layout (spec §4.5). The map need not be finalized to encode,
// but kind-specific tables are only written for buckets that are.
func Encode(m *crush.Map) ([]byte, error) {
	bw := cos.NewPacker(4096)

	buckets := m.Buckets()
	maxBucketSlot := 0
	for _, b := range buckets {
		if slot := bucketSlot(b.ID) + 1; slot > maxBucketSlot {
			maxBucketSlot = slot
		}
	}
	bySlot := make(map[int]*crush.Bucket, len(buckets))
	for _, b := range buckets {
		bySlot[bucketSlot(b.ID)] = b
	}

	rules := m.Rules()
	maxDevices := int(m.MaxDevices())

	bw.WriteUint32(Magic)
	bw.WriteUint32(uint32(maxBucketSlot))
	bw.WriteUint32(uint32(len(rules)))
	bw.WriteUint32(uint32(maxDevices))

	for slot := 0; slot < maxBucketSlot; slot++ {
		b, ok := bySlot[slot]
		if !ok {
			bw.WriteUint32(0)
			continue
		}
		bw.WriteUint32(1)
		writeBucket(bw, b)
	}

	for _, r := range rules {
		bw.WriteUint32(1)
		writeRule(bw, r)
	}

	devices := m.Devices()
	byID := make(map[int32]*crush.Device, len(devices))
	for _, d := range devices {
		byID[d.ID] = d
	}
	for id := int32(0); id < int32(maxDevices); id++ {
		if d, ok := byID[id]; ok {
			bw.WriteUint32(d.Offload.Uint32())
		} else {
			bw.WriteUint32(0)
		}
	}

	writeNameTable(bw, typeEntries(m))
	writeNameTable(bw, itemEntries(m))
	writeNameTable(bw, ruleEntries(rules))

	return bw.Bytes(), nil
}

// bucketSlot maps a bucket's (negative) id to a dense, zero-based array
// slot: id -1 -> slot 0, id -2 -> slot 1, and so on, matching the
// original CRUSH convention of indexing buckets by -(id)-1.
func bucketSlot(id int32) int     { return int(-id - 1) }
func slotBucketID(slot int) int32 { return int32(-slot - 1) }

func writeBucket(bw *cos.BytePack, b *crush.Bucket) {
	debug.Assertf(len(b.Children) == len(b.Weights),
		"bucket %d: %d children but %d weights", b.ID, len(b.Children), len(b.Weights))
	bw.WriteUint32(uint32(b.Kind))
	bw.WriteUint32(uint32(b.TypeID))
	bw.WriteUint32(b.TotalWeight.Uint32())
	bw.WriteUint32(uint32(len(b.Children)))
	for _, c := range b.Children {
		bw.WriteInt32(c)
	}
	for _, w := range b.Weights {
		bw.WriteUint32(w.Uint32())
	}
	switch b.Kind {
	case crush.KindUniform:
		writeUint32Slice(bw, b.UniformPrimes())
	case crush.KindList:
		sums := b.ListSumWeights()
		bw.WriteUint32(uint32(len(sums)))
		for _, s := range sums {
			bw.WriteUint32(uint32(s))
		}
	case crush.KindTree:
		writeUint32Slice(bw, b.TreeNodeWeights())
	case crush.KindStraw:
		straws := b.StrawFactors()
		bw.WriteUint32(uint32(len(straws)))
		for _, s := range straws {
			bw.WriteUint32(cos.FixedFromFloat(s).Uint32())
		}
	}
}

func writeUint32Slice(bw *cos.BytePack, vals []uint32) {
	bw.WriteUint32(uint32(len(vals)))
	for _, v := range vals {
		bw.WriteUint32(v)
	}
}

func writeRule(bw *cos.BytePack, r *crush.Rule) {
	bw.WriteUint32(uint32(len(r.Steps)))
	bw.WriteUint32(uint32(r.Pool))
	bw.WriteUint32(uint32(r.Type))
	bw.WriteUint32(uint32(r.MinSize))
	bw.WriteUint32(uint32(r.MaxSize))
	for _, step := range r.Steps {
		bw.WriteUint32(uint32(step.Op))
		bw.WriteInt32(step.Arg1)
		bw.WriteInt32(step.Arg2)
	}
}

type nameEntry struct {
	id   int32
	name string
}

func typeEntries(m *crush.Map) []nameEntry {
	var out []nameEntry
	for _, t := range m.Types() {
		out = append(out, nameEntry{id: t.ID, name: t.Name})
	}
	return out
}

func itemEntries(m *crush.Map) []nameEntry {
	var out []nameEntry
	for _, it := range m.ItemNames() {
		out = append(out, nameEntry{id: it.ID, name: it.Name})
	}
	return out
}

func ruleEntries(rules []*crush.Rule) []nameEntry {
	var out []nameEntry
	for _, r := range rules {
		if r.Name == "" {
			continue
		}
		out = append(out, nameEntry{id: r.ID, name: r.Name})
	}
	return out
}

func writeNameTable(bw *cos.BytePack, entries []nameEntry) {
	bw.WriteUint32(uint32(len(entries)))
	for _, e := range entries {
		bw.WriteInt32(e.id)
		bw.WriteString(e.name)
	}
}
