/*
 * Copyright (c) 2018-2026, NVIDIA CORPORATION. All rights reserved.
 */
package crush

// treeTable carries a Tree bucket's implicit complete binary tree of
// subtree-weight sums (spec §3, §4.2). The tree is stored 1-indexed
// (root at index 1, node k's children at 2k and 2k+1 — the classic
// binary-heap layout) over nodeWeights, padded to the next power of two
// so every internal node has exactly two children; leaves occupy
// indices [size, 2*size).
type treeTable struct {
	size        int      // padded leaf count (power of two >= len(Children))
	nodeWeights []uint32 // length 2*size; index 0 unused
}

func nextPow2(n int) int {
	p := 1
	for p < n {
		p <<= 1
	}
	if p < 1 {
		p = 1
	}
	return p
}

func (b *Bucket) finalizeTree() {
	n := len(b.Children)
	size := nextPow2(n)
	nw := make([]uint32, 2*size)
	for i := 0; i < n; i++ {
		nw[size+i] = uint32(b.Weights[i])
	}
	for i := size - 1; i >= 1; i-- {
		nw[i] = nw[2*i] + nw[2*i+1]
	}
	b.tree = &treeTable{size: size, nodeWeights: nw}
}

func (b *Bucket) pickTree(x, r uint32) int {
	t := b.tree
	idx := 1
	for idx < t.size {
		left, right := 2*idx, 2*idx+1
		l, rw := t.nodeWeights[left], t.nodeWeights[right]
		total := l + rw
		if total == 0 {
			idx = left
			continue
		}
		draw := Hash(x, uint32(b.ID), uint32(idx), r) % total
		if draw < l {
			idx = left
		} else {
			idx = right
		}
	}
	leaf := idx - t.size
	if leaf >= len(b.Children) {
		// Descended into zero-weight padding; fall back deterministically
		// to the first real child.
		return 0
	}
	return leaf
}
