/*
 * Copyright (c) 2018-2026, NVIDIA CORPORATION. All rights reserved.
 */
package compile

import (
	"strings"
	"testing"

	"github.com/isabella232/libcrush/cos"
	"github.com/isabella232/libcrush/crush"
)

const sampleText = `
device 0 osd0
device 1 osd1
device 2 osd2
device 3 osd3

type 1 host

host h1 {
  id -1
  alg straw
  item osd0 weight 1.000
  item osd1 weight 1.000
  item osd2 weight 1.000
  item osd3 weight 1.000
}

rule data {
  pool 0
  type replicated
  min_size 1
  max_size 10
  step take h1
  step choose firstn 0 type device
  step emit
}
`

func TestCompileSampleText(t *testing.T) {
	m, err := Compile("sample.txt", sampleText)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	if m.MaxDevices() != 4 {
		t.Fatalf("expected 4 devices, got %d", m.MaxDevices())
	}
	rule, ok := m.RuleByName("data")
	if !ok {
		t.Fatal("expected rule 'data'")
	}
	sel := crush.NewSelector(m)
	out := sel.MapPG(rule, 0, 2)
	if len(out) != 2 || out[0] == out[1] {
		t.Fatalf("unexpected placement: %v", out)
	}
}

func TestCompileUndefinedItem(t *testing.T) {
	src := `
type 1 host
host h1 {
  id -1
  alg straw
  item ghost weight 1.000
}
`
	_, err := Compile("bad.txt", src)
	if err == nil {
		t.Fatal("expected an error for undefined item")
	}
	if !strings.Contains(err.Error(), "ghost") {
		t.Fatalf("expected error to mention 'ghost', got %v", err)
	}
	perr, ok := err.(*cos.ErrParse)
	if !ok {
		t.Fatalf("expected *cos.ErrParse, got %T", err)
	}
	if perr.File != "bad.txt" {
		t.Fatalf("expected file 'bad.txt', got %q", perr.File)
	}
}

func TestCompileDuplicateDeviceID(t *testing.T) {
	src := "device 0 osd0\ndevice 0 osd0b\n"
	_, err := Compile("dup.txt", src)
	if err == nil {
		t.Fatal("expected a duplicate-id error")
	}
}

func TestCompileIllegalOffload(t *testing.T) {
	src := "device 0 osd0 offload 1.500\n"
	_, err := Compile("badoffload.txt", src)
	if err == nil {
		t.Fatal("expected an illegal-offload error")
	}
}

func TestCompileOccupiedPos(t *testing.T) {
	src := `
type 1 host
device 0 osd0
device 1 osd1
host h1 {
  id -1
  alg straw
  item osd0 weight 1.000 pos 0
  item osd1 weight 1.000 pos 0
}
`
	_, err := Compile("badpos.txt", src)
	if err == nil {
		t.Fatal("expected an occupied-position error")
	}
	if !strings.Contains(err.Error(), "occupied") {
		t.Fatalf("expected message to mention 'occupied', got %v", err)
	}
}

func TestRoundTripCompileDecompileRecompile(t *testing.T) {
	m1, err := Compile("orig.txt", sampleText)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	text2 := Decompile(m1)
	m2, err := Compile("decompiled.txt", text2)
	if err != nil {
		t.Fatalf("recompile failed: %v\n--- decompiled text ---\n%s", err, text2)
	}

	rule1, _ := m1.RuleByName("data")
	rule2, _ := m2.RuleByName("data")
	sel1 := crush.NewSelector(m1)
	sel2 := crush.NewSelector(m2)
	for pg := int64(0); pg < 100; pg++ {
		a := sel1.MapPG(rule1, pg, 2)
		b := sel2.MapPG(rule2, pg, 2)
		if len(a) != len(b) {
			t.Fatalf("pg %d: length mismatch %v vs %v", pg, a, b)
		}
		for i := range a {
			if a[i] != b[i] {
				t.Fatalf("pg %d: mismatch %v vs %v", pg, a, b)
			}
		}
	}
}
