/*
 * Copyright (c) 2018-2026, NVIDIA CORPORATION. All rights reserved.
 */
package crush

// listTable carries a List bucket's precomputed cumulative weights
// (spec §3, §4.2). sumWeights[i] = sum(Weights[0..i]) inclusive.
//
// Grounded on buildbarn-bb-storage's weightedShardPermuter, which
// precomputes identical cumulative weights for a binary-searchable
// single draw; List differs by walking newest-to-oldest and
// accept/reject per child rather than one binary search, which is what
// gives newly appended children a cheap, minimally disruptive mapping
// (spec §4.2 rationale).
type listTable struct {
	sumWeights []int64
}

func (b *Bucket) finalizeList() {
	sums := make([]int64, len(b.Weights))
	var running int64
	for i, w := range b.Weights {
		running += int64(w)
		sums[i] = running
	}
	b.list = &listTable{sumWeights: sums}
}

func (b *Bucket) pickList(x, r uint32) int {
	t := b.list
	for i := len(b.Children) - 1; i >= 0; i-- {
		s := t.sumWeights[i]
		if s <= 0 {
			continue
		}
		w := int64(b.Weights[i])
		draw := Hash(x, uint32(b.ID), uint32(b.Children[i]), r)
		tval := int64(draw) % s
		if tval < w {
			return i
		}
	}
	// Global retry budget in the selector bounds how often we get here;
	// as a last resort fall back to the oldest (first) child so pick
	// always returns a valid index rather than -1.
	return 0
}
