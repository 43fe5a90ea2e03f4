// Package crush implements the CRUSH placement engine: the in-memory
// topology/rule model, the deterministic weighted selection algorithm,
// and the supporting hash and erasure-pool helpers. See SPEC_FULL.md.
/*
 * Copyright (c) 2018-2026, NVIDIA CORPORATION. All rights reserved.
 */
package crush

// Hash is the engine's sole pseudo-random source: a Jenkins-style
// shift/xor/subtract mix ("lookup2" family) over a 32-bit running
// triple (a, b, c), folding in 1 to 5 caller-supplied words. It is the
// deterministic, endianness-independent draw every bucket `pick`
// operation and every selector retry is built on (spec §4.1): the same
// input words always produce the same 32-bit output, on any host, in
// any future build of this package — nothing here may ever change
// behavior once released.
//
// Grounded on the rendezvous combine-then-finalize shape already used
// by the teacher's fs/hrw.go (Hrw combines a per-mountpath digest with
// a per-object digest through one more mixing pass before comparing);
// this generalizes that single combine step into a full Jenkins mix
// over a variable arity of inputs, per spec §4.1's requirement to
// accept 1..5 input words.
const hashSeed uint32 = 1315423911

// mix is the classic Jenkins lookup2 "hashmix": three rounds of
// subtract/shift/xor that thoroughly scrambles (a, b, c).
func mix(a, b, c uint32) (uint32, uint32, uint32) {
	a -= b
	a -= c
	a ^= c >> 13
	b -= c
	b -= a
	b ^= a << 8
	c -= a
	c -= b
	c ^= b >> 13
	a -= b
	a -= c
	a ^= c >> 12
	b -= c
	b -= a
	b ^= a << 16
	c -= a
	c -= b
	c ^= b >> 5
	a -= b
	a -= c
	a ^= c >> 3
	b -= c
	b -= a
	b ^= a << 10
	c -= a
	c -= b
	c ^= b >> 15
	return a, b, c
}

// Hash folds 1 to 5 uint32 words into one well-mixed 32-bit draw.
// Panics if called with zero or more than 5 words: every call site in
// this package passes a fixed, known arity, so an out-of-range call
// indicates a programming error, not a runtime condition.
func Hash(words ...uint32) uint32 {
	n := len(words)
	if n < 1 || n > 5 {
		panic("crush: Hash accepts 1..5 words")
	}
	a, b, c := hashSeed, hashSeed, hashSeed
	a += words[0]
	if n > 1 {
		b += words[1]
	}
	if n > 2 {
		c += words[2]
	}
	a, b, c = mix(a, b, c)
	if n > 3 {
		a += words[3]
		a, b, c = mix(a, b, c)
	}
	if n > 4 {
		b += words[4]
		a, b, c = mix(a, b, c)
	}
	return c
}
