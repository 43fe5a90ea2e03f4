/*
 * Copyright (c) 2018-2026, NVIDIA CORPORATION. All rights reserved.
 */
package crush

import (
	"github.com/isabella232/libcrush/cos"
	"github.com/isabella232/libcrush/debug"
)

// Kind is the bucket algorithm tag. Four kinds, one operation each:
// "pick one child pseudo-randomly given an input hash" (spec §2, §4.2).
// Re-architected as a tagged variant per spec §9 ("re-architect as a
// tagged variant with the four kinds each carrying its precomputed
// table. Selection dispatches on the tag; shared attributes... live in
// a common struct") rather than the original's subtype/virtual dispatch.
type Kind int32

const (
	KindUniform Kind = iota + 1
	KindList
	KindTree
	KindStraw
)

func (k Kind) String() string {
	switch k {
	case KindUniform:
		return "uniform"
	case KindList:
		return "list"
	case KindTree:
		return "tree"
	case KindStraw:
		return "straw"
	default:
		return "unknown"
	}
}

func ParseKind(s string) (Kind, bool) {
	switch s {
	case "uniform":
		return KindUniform, true
	case "list":
		return KindList, true
	case "tree":
		return KindTree, true
	case "straw":
		return KindStraw, true
	default:
		return 0, false
	}
}

// Bucket is an interior node of the topology (spec §3). Shared fields
// live here; kind-specific precomputed tables (populated by Finalize)
// are carried in the *table fields, one of which is non-nil once
// finalized, matching Bucket.Kind.
type Bucket struct {
	ID          int32
	Kind        Kind
	TypeID      int32
	Children    []int32          // device ids (>=0) or bucket ids (<0)
	Weights     []cos.Fixed16_16 // parallel to Children
	TotalWeight cos.Fixed16_16

	uniform *uniformTable
	list    *listTable
	tree    *treeTable
	straw   *strawTable
}

// recomputeTotalWeight sums Weights into TotalWeight; called by Map
// whenever Children/Weights change and again defensively at Finalize.
func (b *Bucket) recomputeTotalWeight() {
	var total cos.Fixed16_16
	for _, w := range b.Weights {
		total += w
	}
	b.TotalWeight = total
}

// UniformPrimes exposes a finalized Uniform bucket's precomputed prime
// table (nil if unfinalized or not Uniform). Used by the binary codec
// to serialize the kind-specific table (spec §4.5).
func (b *Bucket) UniformPrimes() []uint32 {
	if b.uniform == nil {
		return nil
	}
	return b.uniform.primes
}

// ListSumWeights exposes a finalized List bucket's cumulative weight
// table. Used by the binary codec (spec §4.5).
func (b *Bucket) ListSumWeights() []int64 {
	if b.list == nil {
		return nil
	}
	return b.list.sumWeights
}

// TreeNodeWeights exposes a finalized Tree bucket's binary-heap subtree
// weight table. Used by the binary codec (spec §4.5).
func (b *Bucket) TreeNodeWeights() []uint32 {
	if b.tree == nil {
		return nil
	}
	return b.tree.nodeWeights
}

// StrawFactors exposes a finalized Straw bucket's precomputed per-child
// scaling factors. Used by the binary codec (spec §4.5).
func (b *Bucket) StrawFactors() []float64 {
	if b.straw == nil {
		return nil
	}
	return b.straw.straws
}

// pick selects one child index given the caller's draw x and attempt
// counter r (spec §4.2: "pick(bucket, x, r) -> child_index"). Returns
// -1 if the bucket has no children.
func (b *Bucket) pick(x, r uint32) int {
	if len(b.Children) == 0 {
		return -1
	}
	var idx int
	switch b.Kind {
	case KindUniform:
		idx = b.pickUniform(x, r)
	case KindList:
		idx = b.pickList(x, r)
	case KindTree:
		idx = b.pickTree(x, r)
	case KindStraw:
		idx = b.pickStraw(x, r)
	default:
		return -1
	}
	debug.Assertf(idx >= -1 && idx < len(b.Children),
		"bucket %d (%s): pick returned out-of-range index %d for %d children", b.ID, b.Kind, idx, len(b.Children))
	return idx
}
