/*
 * Copyright (c) 2018-2026, NVIDIA CORPORATION. All rights reserved.
 */
package ecpool

import (
	"bytes"
	"testing"

	"github.com/isabella232/libcrush/crush"
)

func TestValidateRejectsWrongSlotCount(t *testing.T) {
	p := Profile{Data: 4, Parity: 2}
	rule := &crush.Rule{
		Name: "ec",
		Type: crush.RuleTypeErasure,
		Steps: []crush.Step{
			crush.TakeStep(0),
			crush.ChooseStep(crush.ModeIndep, 5, crush.DeviceTypeID),
			crush.EmitStep(),
		},
	}
	if err := p.Validate(rule); err == nil {
		t.Fatal("expected Validate to reject a mismatched slot count")
	}
}

func TestValidateAcceptsMatchingSlotCount(t *testing.T) {
	p := Profile{Data: 4, Parity: 2}
	rule := &crush.Rule{
		Name: "ec",
		Type: crush.RuleTypeErasure,
		Steps: []crush.Step{
			crush.TakeStep(0),
			crush.ChooseStep(crush.ModeIndep, 6, crush.DeviceTypeID),
			crush.EmitStep(),
		},
	}
	if err := p.Validate(rule); err != nil {
		t.Fatalf("Validate: %v", err)
	}
}

func TestSplitReconstructRoundTrip(t *testing.T) {
	pool, err := NewPool(Profile{Data: 4, Parity: 2})
	if err != nil {
		t.Fatalf("NewPool: %v", err)
	}
	data := bytes.Repeat([]byte("0123456789abcdef"), 64) // 1024 bytes, divisible by 4
	shards, err := pool.Split(data)
	if err != nil {
		t.Fatalf("Split: %v", err)
	}
	if len(shards) != 6 {
		t.Fatalf("expected 6 shards, got %d", len(shards))
	}

	// Drop up to `parity` shards (simulate NoDevice gaps) and reconstruct.
	lossy := make([][]byte, len(shards))
	copy(lossy, shards)
	lossy[1] = nil
	lossy[4] = nil

	out, err := pool.Reconstruct(lossy, len(data))
	if err != nil {
		t.Fatalf("Reconstruct: %v", err)
	}
	if !bytes.Equal(out, data) {
		t.Fatalf("reconstructed data mismatch: got %q want %q", out, data)
	}
}

func TestShardsForSlots(t *testing.T) {
	shards := [][]byte{[]byte("a"), []byte("b"), []byte("c"), []byte("d")}
	slots := []int32{10, crush.NoDevice, 11, 12, crush.NoDevice}
	out := ShardsForSlots(shards, slots)
	if len(out) != len(slots) {
		t.Fatalf("expected %d slots, got %d", len(slots), len(out))
	}
	if out[1] != nil || out[4] != nil {
		t.Fatal("expected nil shards at gap positions")
	}
	if string(out[0]) != "a" || string(out[2]) != "b" || string(out[3]) != "c" {
		t.Fatalf("unexpected shard arrangement: %v", out)
	}
}
