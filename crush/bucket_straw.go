/*
 * Copyright (c) 2018-2026, NVIDIA CORPORATION. All rights reserved.
 */
package crush

import (
	"math"
	"sort"
)

// strawTable carries a Straw bucket's precomputed per-child scaling
// factors (spec §3, §4.2): sort weights ascending, give equal weights
// equal straws, and at each step up to a heavier weight multiply the
// straw by ((wbelow+wnext)/wbelow)^(1/remaining), where remaining counts
// the children from that one on, wbelow accumulates each weight step
// times the children still remaining at it, and wnext is the next step
// times remaining; this makes every child's long-run
// selection frequency equals its weight fraction and — uniquely among
// the four kinds — adding or removing a child only steals/returns a
// proportional share from every other child (the stability property,
// spec §4.4, §8 property 5).
//
// Grounded on buildbarn-bb-playground's weightedRendezvousPicker
// (precomputed per-child scaling factor combined multiplicatively with
// a fresh draw, winner = arg max) and andrewchambers-crushstore's
// RendezvousHashSelector (deterministic tie-break by id on equal score).
type strawTable struct {
	straws []float64 // parallel to Children
}

func (b *Bucket) finalizeStraw() {
	n := len(b.Children)
	straws := make([]float64, n)
	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(a, c int) bool { return b.Weights[order[a]] < b.Weights[order[c]] })

	scale := 1.0
	remaining := n
	var wbelow, wprev float64
	for rank, idx := range order {
		wi := float64(b.Weights[idx])
		if wi <= 0 {
			remaining-- // zero-weight children keep straw 0
			continue
		}
		wbelow += (wi - wprev) * float64(remaining)
		wprev = wi
		straws[idx] = scale
		remaining--
		if rank == n-1 {
			break
		}
		if wnext := float64(b.Weights[order[rank+1]]); wnext > wi {
			gain := (wnext - wi) * float64(remaining)
			scale *= math.Pow((wbelow+gain)/wbelow, 1.0/float64(remaining))
		}
	}
	b.straw = &strawTable{straws: straws}
}

func (b *Bucket) pickStraw(x, r uint32) int {
	t := b.straw
	best := -1
	var bestScore float64
	var bestChild int32
	for i, child := range b.Children {
		draw := Hash(x, uint32(b.ID), uint32(i), r)
		score := float64(draw) * t.straws[i]
		if best == -1 || score > bestScore || (score == bestScore && child > bestChild) {
			best, bestScore, bestChild = i, score, child
		}
	}
	return best
}
