/*
 * Copyright (c) 2018-2026, NVIDIA CORPORATION. All rights reserved.
 */
package cos

import "testing"

func TestBytePackRoundTrip(t *testing.T) {
	bw := NewPacker(64)
	bw.WriteUint32(0xdeadbeef)
	bw.WriteInt32(-7)
	bw.WriteString("host1")

	br := NewUnpacker(bw.Bytes())
	u, err := br.ReadUint32()
	if err != nil || u != 0xdeadbeef {
		t.Fatalf("ReadUint32 = %d, %v", u, err)
	}
	i, err := br.ReadInt32()
	if err != nil || i != -7 {
		t.Fatalf("ReadInt32 = %d, %v", i, err)
	}
	s, err := br.ReadString()
	if err != nil || s != "host1" {
		t.Fatalf("ReadString = %q, %v", s, err)
	}
	if br.Remaining() != 0 {
		t.Fatalf("expected 0 remaining, got %d", br.Remaining())
	}
}

func TestBytePackUnderrun(t *testing.T) {
	br := NewUnpacker([]byte{1, 2})
	if _, err := br.ReadUint32(); err != ErrBufferUnderrun {
		t.Fatalf("expected ErrBufferUnderrun, got %v", err)
	}
}

func TestFixedPointRoundTrip(t *testing.T) {
	f, err := ParseFixed("0.500")
	if err != nil {
		t.Fatal(err)
	}
	if f != FixedScale/2 {
		t.Fatalf("expected %d, got %d", FixedScale/2, f)
	}
	if f.String() != "0.500" {
		t.Fatalf("expected 0.500, got %s", f.String())
	}
	if !f.InUnitInterval() {
		t.Fatalf("expected 0.5 in unit interval")
	}
}
