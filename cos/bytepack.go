/*
 * Copyright (c) 2018-2026, NVIDIA CORPORATION. All rights reserved.
 */
package cos

import (
	"encoding/binary"
	"errors"
)

// The module provides a way to encode/decode the wire topology as a
// compact little-endian binary slice (see spec §4.5 and §9
// "Endianness" — the encoding is little-endian regardless of host).
//
// Unlike the teacher's cmn/cos/bytepack.go (big-endian, POD-oriented,
// used for small ad hoc structs) this variant carries only the
// primitives the codec actually needs: fixed-width int32/uint32 and
// length-prefixed byte strings.

type (
	BytePack struct {
		off int
		b   []byte
	}

	ByteUnpack struct {
		off int
		b   []byte
	}
)

var ErrBufferUnderrun = errors.New("buffer underrun")

// NewPacker allocates a packer with bufLen bytes of initial capacity;
// the buffer grows automatically past that, so bufLen is a sizing hint
// (pass the expected encoded length to avoid reallocation), not a hard
// cap.
func NewPacker(bufLen int) *BytePack {
	return &BytePack{b: make([]byte, 0, bufLen)}
}

func NewUnpacker(buf []byte) *ByteUnpack {
	return &ByteUnpack{b: buf}
}

//
// Packer
//

func (bw *BytePack) grow(n int) {
	need := bw.off + n
	if need <= cap(bw.b) {
		bw.b = bw.b[:need]
		return
	}
	grown := make([]byte, need, need*2)
	copy(grown, bw.b)
	bw.b = grown
}

func (bw *BytePack) WriteUint32(v uint32) {
	bw.grow(4)
	binary.LittleEndian.PutUint32(bw.b[bw.off:], v)
	bw.off += 4
}

func (bw *BytePack) WriteInt32(v int32) { bw.WriteUint32(uint32(v)) }

func (bw *BytePack) WriteBytes(b []byte) {
	bw.WriteUint32(uint32(len(b)))
	bw.grow(len(b))
	bw.off += copy(bw.b[bw.off:], b)
}

func (bw *BytePack) WriteString(s string) { bw.WriteBytes([]byte(s)) }

func (bw *BytePack) Off() int { return bw.off }

func (bw *BytePack) Bytes() []byte { return bw.b[:bw.off] }

//
// Unpacker
//

func (br *ByteUnpack) ReadUint32() (uint32, error) {
	if len(br.b)-br.off < 4 {
		return 0, ErrBufferUnderrun
	}
	v := binary.LittleEndian.Uint32(br.b[br.off:])
	br.off += 4
	return v, nil
}

func (br *ByteUnpack) ReadInt32() (int32, error) {
	v, err := br.ReadUint32()
	return int32(v), err
}

func (br *ByteUnpack) ReadBytes() ([]byte, error) {
	l, err := br.ReadUint32()
	if err != nil {
		return nil, err
	}
	if len(br.b)-br.off < int(l) {
		return nil, ErrBufferUnderrun
	}
	start := br.off
	br.off += int(l)
	out := make([]byte, l)
	copy(out, br.b[start:br.off])
	return out, nil
}

func (br *ByteUnpack) ReadString() (string, error) {
	b, err := br.ReadBytes()
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func (br *ByteUnpack) Off() int { return br.off }

func (br *ByteUnpack) Remaining() int { return len(br.b) - br.off }
