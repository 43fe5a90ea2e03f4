/*
 * Copyright (c) 2018-2026, NVIDIA CORPORATION. All rights reserved.
 */
package crush

// Retry budget (spec §4.4): "implementation MUST bound total hashes per
// map_pg call (reference bound: 50 local x 50 total)."
const (
	maxLocalRetries  = 50
	maxGlobalRetries = 50
)

// Selector evaluates a Rule against a finalized Map to produce an
// ordered device vector (spec §4.4). Pure and stateless between calls:
// safe for concurrent use by multiple goroutines against the same
// finalized Map (spec §5).
type Selector struct {
	Map     *Map
	Metrics *Metrics // optional; nil is safe (see metrics.go)
}

func NewSelector(m *Map) *Selector { return &Selector{Map: m} }

// MapPG implements the spec §4.4 stack machine: take/choose/chooseleaf/
// emit steps over a `work` and `result` vector. Returns a slice of
// device ids; "indep" steps may leave NoDevice gaps at a deterministic
// slot (spec §4.4, §7 SelectionExhausted — never an error).
func (s *Selector) MapPG(rule *Rule, pg int64, maxResult int) []int32 {
	var work, result []int32
	for stepIdx, step := range rule.Steps {
		switch step.Op {
		case OpTake:
			work = []int32{step.Arg1}
		case OpEmit:
			result = append(result, work...)
			work = nil
		default:
			if step.Op.isChoose() {
				work = s.runChoose(rule, stepIdx, step, work, pg, maxResult)
			}
		}
	}
	return result
}

func (s *Selector) runChoose(rule *Rule, stepIdx int, step Step, work []int32, pg int64, maxResult int) []int32 {
	n := int(step.Arg1)
	if n <= 0 {
		n = maxResult + n
	}
	if n < 0 {
		n = 0
	}
	targetType := step.Arg2
	leaf := step.Op.isLeaf()
	indep := step.Op.isIndep()
	scope := uint32(rule.ID)<<16 ^ uint32(stepIdx)
	x := uint32(pg) ^ scope

	var out []int32
	for _, e := range work {
		picked := s.chooseOne(e, n, targetType, leaf, indep, x)
		out = append(out, picked...)
	}
	return out
}

// chooseOne descends from item `e` to produce up to n distinct items of
// targetType (spec §4.4). firstn replays one shared sequence and
// compacts rejections away, so slot k is simply the k-th distinct
// accept out of that sequence. indep instead gives each output slot its
// own hash seed (fold slot into x), so a slot's descent and retries
// follow that slot's own sequence and a slot that cannot be filled is
// left in place as a NoDevice gap (spec §4.4; scenario (f)). The
// duplicate set and the global retry budget are shared by all slots,
// so a replacement pick in one slot can still collide with, and so
// change, what a later slot would otherwise have picked.
func (s *Selector) chooseOne(e int32, n int, targetType int32, leaf, indep bool, x uint32) []int32 {
	outputs := make([]int32, 0, n)
	seen := make(map[int32]bool, n)
	globalRetries := 0

	for slot := 0; slot < n; slot++ {
		slotX := x
		if indep {
			slotX = Hash(x, uint32(slot))
		}
		accepted := int32(NoDevice)
		localRetries := 0
		for r := uint32(1); ; r++ {
			if localRetries >= maxLocalRetries || globalRetries >= maxGlobalRetries {
				s.Metrics.exhausted()
				break
			}
			globalRetries++
			localRetries++

			current := s.descend(e, targetType, slotX, r)
			if current == NoDevice {
				s.Metrics.reject()
				continue
			}
			if seen[current] {
				s.Metrics.reject()
				continue
			}
			if dev, ok := s.Map.devices[current]; ok {
				if s.rejectByOffload(dev, slotX, r) {
					s.Metrics.reject()
					continue
				}
			}
			if leaf && current < 0 {
				// current is a bucket of targetType but chooseleaf wants a
				// device: recurse to pick exactly one leaf beneath it.
				sub := s.chooseOne(current, 1, DeviceTypeID, true, false, slotX^r)
				if len(sub) == 0 || sub[0] == NoDevice {
					s.Metrics.reject()
					continue
				}
				current = sub[0]
				if seen[current] {
					s.Metrics.reject()
					continue
				}
			}
			accepted = current
			s.Metrics.accept()
			break
		}

		if accepted == NoDevice {
			if indep {
				outputs = append(outputs, NoDevice)
			}
			// firstn: simply produces a shorter list; nothing appended.
			if globalRetries >= maxGlobalRetries {
				if indep {
					for len(outputs) < n {
						outputs = append(outputs, NoDevice)
					}
				}
				return outputs
			}
			continue
		}
		seen[accepted] = true
		outputs = append(outputs, accepted)
	}
	return outputs
}

// descend walks from item e down through buckets whose type is above
// targetType, picking one child at each level via round r combined with
// a local retry offset (spec §4.4 pseudocode). Returns NoDevice if the
// walk bottoms out at an item that isn't of targetType.
func (s *Selector) descend(e int32, targetType int32, x uint32, r uint32) int32 {
	current := e
	for {
		if current >= 0 {
			// a device: acceptable only if targetType is also "device"
			if targetType == DeviceTypeID {
				return current
			}
			return NoDevice
		}
		b, ok := s.Map.buckets[current]
		if !ok {
			return NoDevice
		}
		if b.TypeID == targetType {
			return current
		}
		if b.TypeID < targetType {
			return NoDevice
		}
		idx := b.pick(x, r)
		if idx < 0 {
			return NoDevice
		}
		current = b.Children[idx]
	}
}

// rejectByOffload simulates a probabilistic rejection of an overloaded
// or down device (spec §3 Device.Offload, §4.4). Deterministic given
// (x, r, device id): the same inputs always yield the same accept/
// reject outcome.
func (s *Selector) rejectByOffload(d *Device, x, r uint32) bool {
	if d.Offload <= 0 {
		return false
	}
	draw := Hash(x, uint32(d.ID)+0x5bd1e995, r)
	return uint64(draw) < uint64(d.Offload)<<16 // scale 16.16 offload into the 32-bit draw space
}
