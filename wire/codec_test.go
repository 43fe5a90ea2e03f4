/*
 * Copyright (c) 2018-2026, NVIDIA CORPORATION. All rights reserved.
 */
package wire

import (
	"testing"

	"github.com/isabella232/libcrush/cos"
	"github.com/isabella232/libcrush/crush"
)

func buildSampleMap(t *testing.T) *crush.Map {
	t.Helper()
	m := crush.NewMap()
	for i := int32(0); i < 5; i++ {
		if err := m.AddDevice(i, "", 0); err != nil {
			t.Fatal(err)
		}
	}
	if err := m.SetTypeName(1, "host"); err != nil {
		t.Fatal(err)
	}
	if err := m.SetItemName(0, "osd0"); err != nil {
		t.Fatal(err)
	}
	weights := []cos.Fixed16_16{cos.FixedScale, cos.FixedScale, cos.FixedScale}
	hostA, err := m.AddBucket(0, crush.KindStraw, 1, []int32{0, 1, 2}, weights)
	if err != nil {
		t.Fatal(err)
	}
	hostB, err := m.AddBucket(0, crush.KindUniform, 1, []int32{3, 4}, []cos.Fixed16_16{cos.FixedScale, cos.FixedScale})
	if err != nil {
		t.Fatal(err)
	}
	rootID, err := m.AddBucket(0, crush.KindTree, 2, []int32{hostA, hostB}, []cos.Fixed16_16{cos.FixedScale, cos.FixedScale})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := m.AddRule("data", 0, crush.RuleTypeReplicated, 1, 10, []crush.Step{
		crush.TakeStep(rootID),
		crush.ChooseStep(crush.ModeFirstN, 2, 1),
		crush.ChooseLeafStep(crush.ModeFirstN, 1, crush.DeviceTypeID),
		crush.EmitStep(),
	}); err != nil {
		t.Fatal(err)
	}
	if _, err := m.AddRule("", 0, crush.RuleTypeReplicated, 1, 3, []crush.Step{
		crush.TakeStep(hostA),
		crush.ChooseStep(crush.ModeFirstN, 0, crush.DeviceTypeID),
		crush.EmitStep(),
	}); err != nil {
		t.Fatal(err)
	}
	if err := m.Finalize(); err != nil {
		t.Fatal(err)
	}
	return m
}

func TestRoundTripPlacementIdentical(t *testing.T) {
	m := buildSampleMap(t)
	data, err := Encode(m)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	decoded, err := Decode(data)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}

	origSel := crush.NewSelector(m)
	decSel := crush.NewSelector(decoded)
	for _, name := range []string{"data", ""} {
		var rule, drule *crush.Rule
		if name == "" {
			rule, _ = m.Rule(1)
			drule, _ = decoded.Rule(1)
		} else {
			rule, _ = m.RuleByName(name)
			drule, _ = decoded.RuleByName(name)
		}
		for pg := int64(0); pg < 200; pg++ {
			a := origSel.MapPG(rule, pg, 2)
			b := decSel.MapPG(drule, pg, 2)
			if len(a) != len(b) {
				t.Fatalf("rule %q pg %d: length mismatch %v vs %v", name, pg, a, b)
			}
			for i := range a {
				if a[i] != b[i] {
					t.Fatalf("rule %q pg %d: mismatch %v vs %v", name, pg, a, b)
				}
			}
		}
	}
}

func TestRoundTripPreservesNamesAndTopology(t *testing.T) {
	m := buildSampleMap(t)
	data, err := Encode(m)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	decoded, err := Decode(data)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}

	if name, ok := decoded.TypeName(1); !ok || name != "host" {
		t.Fatalf("expected type 1 = host, got %q, %v", name, ok)
	}
	if id, ok := decoded.ItemID("osd0"); !ok || id != 0 {
		t.Fatalf("expected osd0 = item 0, got %d, %v", id, ok)
	}
	if _, ok := decoded.RuleByName("data"); !ok {
		t.Fatal("expected rule 'data' to survive round trip")
	}
	if decoded.MaxDevices() != m.MaxDevices() {
		t.Fatalf("MaxDevices mismatch: %d vs %d", decoded.MaxDevices(), m.MaxDevices())
	}
	if len(decoded.Buckets()) != len(m.Buckets()) {
		t.Fatalf("bucket count mismatch: %d vs %d", len(decoded.Buckets()), len(m.Buckets()))
	}
}

func TestDecodeRejectsUnknownMagic(t *testing.T) {
	bad := []byte{0xff, 0xff, 0xff, 0xff, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0}
	if _, err := Decode(bad); err == nil {
		t.Fatal("expected ErrUnknownVersion")
	} else if _, ok := err.(*cos.ErrUnknownVersion); !ok {
		t.Fatalf("expected *cos.ErrUnknownVersion, got %T: %v", err, err)
	}
}

func TestDecodeRejectsTruncatedBuffer(t *testing.T) {
	m := buildSampleMap(t)
	data, err := Encode(m)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := Decode(data[:len(data)-10]); err == nil {
		t.Fatal("expected a decode error on truncated input")
	}
}
