/*
 * Copyright (c) 2018-2026, NVIDIA CORPORATION. All rights reserved.
 */
package crush

import (
	"fmt"

	"github.com/isabella232/libcrush/cos"
	"github.com/isabella232/libcrush/debug"
	"github.com/isabella232/libcrush/nlog"
)

// Map owns devices, buckets, rules, and the name registries that bind
// human-readable names to item/type/rule ids (spec §3 Map, §4.3).
//
// Construction follows the teacher's plain-constructor-then-validate
// idiom (core/meta/bck.go's NewBck/CloneBck): build with AddDevice/
// AddBucket/AddRule in declaration order (devices, then types, then
// buckets, then rules, per spec §3 Lifecycle), then call Finalize.
type Map struct {
	devices map[int32]*Device
	buckets map[int32]*Bucket
	rules   []*Rule

	typeNames map[int32]string
	typeIDs   map[string]int32

	itemNames map[int32]string
	itemIDs   map[string]int32

	ruleIDs map[string]int32

	maxDevices   int32
	nextBucketID int32 // next auto-assigned bucket id (decrements from -1)

	finalized bool
}

func NewMap() *Map {
	return &Map{
		devices:      make(map[int32]*Device),
		buckets:      make(map[int32]*Bucket),
		typeNames:    make(map[int32]string),
		typeIDs:      make(map[string]int32),
		itemNames:    make(map[int32]string),
		itemIDs:      make(map[string]int32),
		ruleIDs:      make(map[string]int32),
		nextBucketID: -1,
	}
}

func (m *Map) MaxDevices() int32 { return m.maxDevices }
func (m *Map) MaxBuckets() int32 { return int32(len(m.buckets)) }
func (m *Map) Finalized() bool   { return m.finalized }

//
// devices
//

func (m *Map) AddDevice(id int32, name string, offload cos.Fixed16_16) error {
	if id < 0 {
		return &cos.ErrInvalidTopology{Reason: fmt.Sprintf("device id %d must be >= 0", id)}
	}
	if !offload.InUnitInterval() {
		return &cos.ErrInvalidOffload{Value: offload.Float()}
	}
	if _, ok := m.devices[id]; ok {
		return &cos.ErrDuplicate{Kind: "device id", What: fmt.Sprintf("%d", id)}
	}
	if name != "" {
		if err := m.bindItemName(id, name); err != nil {
			return err
		}
	}
	m.devices[id] = &Device{ID: id, Name: name, Offload: offload}
	if id+1 > m.maxDevices {
		m.maxDevices = id + 1
	}
	m.finalized = false
	return nil
}

func (m *Map) Device(id int32) (*Device, bool) {
	d, ok := m.devices[id]
	return d, ok
}

//
// types
//

func (m *Map) SetTypeName(id int32, name string) error {
	if id <= 0 {
		return &cos.ErrInvalidTopology{Reason: "type 0 is reserved for devices"}
	}
	if _, ok := m.typeIDs[name]; ok {
		return &cos.ErrDuplicate{Kind: "type name", What: name}
	}
	if old, ok := m.typeNames[id]; ok {
		delete(m.typeIDs, old)
	}
	m.typeNames[id] = name
	m.typeIDs[name] = id
	return nil
}

func (m *Map) TypeID(name string) (int32, bool) {
	id, ok := m.typeIDs[name]
	return id, ok
}

func (m *Map) TypeName(id int32) (string, bool) {
	if id == DeviceTypeID {
		return "device", true
	}
	name, ok := m.typeNames[id]
	return name, ok
}

//
// item names (devices and buckets share one namespace, spec §3 Item)
//

func (m *Map) bindItemName(id int32, name string) error {
	if _, ok := m.itemIDs[name]; ok {
		return &cos.ErrDuplicate{Kind: "item name", What: name}
	}
	m.itemNames[id] = name
	m.itemIDs[name] = id
	return nil
}

func (m *Map) SetItemName(id int32, name string) error {
	if old, ok := m.itemNames[id]; ok {
		delete(m.itemIDs, old)
	}
	if err := m.bindItemName(id, name); err != nil {
		return err
	}
	if d, ok := m.devices[id]; ok {
		d.Name = name
	}
	return nil
}

func (m *Map) ItemID(name string) (int32, bool) {
	id, ok := m.itemIDs[name]
	return id, ok
}

func (m *Map) ItemName(id int32) (string, bool) {
	name, ok := m.itemNames[id]
	return name, ok
}

// NamedItem is one (id, name) entry of the item name table (spec §4.5
// "name tables: type, item, rule").
type NamedItem struct {
	ID   int32
	Name string
}

// ItemNames returns every named item (device or bucket), sorted by id.
// Used by the binary codec and the decompiler.
func (m *Map) ItemNames() []NamedItem {
	out := make([]NamedItem, 0, len(m.itemNames))
	for id, name := range m.itemNames {
		out = append(out, NamedItem{ID: id, Name: name})
	}
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && out[j].ID < out[j-1].ID; j-- {
			out[j], out[j-1] = out[j-1], out[j]
		}
	}
	return out
}

//
// buckets
//

// AddBucket declares a bucket. id == 0 means auto-assign the next
// negative id (spec §4.3). children/weights must be parallel and
// reference already-declared devices or buckets (existence is checked
// at Finalize, not here, per spec §4.3).
func (m *Map) AddBucket(id int32, kind Kind, typeID int32, children []int32, weights []cos.Fixed16_16) (int32, error) {
	if len(children) != len(weights) {
		return 0, &cos.ErrInvalidTopology{Reason: "children and weights length mismatch"}
	}
	if id == 0 {
		id = m.nextBucketID
	} else if id >= 0 {
		return 0, &cos.ErrInvalidTopology{Reason: fmt.Sprintf("bucket id %d must be negative", id)}
	}
	if _, ok := m.buckets[id]; ok {
		return 0, &cos.ErrDuplicate{Kind: "bucket id", What: fmt.Sprintf("%d", id)}
	}
	b := &Bucket{ID: id, Kind: kind, TypeID: typeID, Children: append([]int32(nil), children...), Weights: append([]cos.Fixed16_16(nil), weights...)}
	b.recomputeTotalWeight()
	m.buckets[id] = b
	if id <= m.nextBucketID {
		m.nextBucketID = id - 1
	}
	m.finalized = false
	return id, nil
}

func (m *Map) Bucket(id int32) (*Bucket, bool) {
	b, ok := m.buckets[id]
	return b, ok
}

//
// rules
//

func (m *Map) AddRule(name string, pool int32, rtype RuleType, minSize, maxSize int32, steps []Step) (int32, error) {
	if name != "" {
		if _, ok := m.ruleIDs[name]; ok {
			return 0, &cos.ErrDuplicate{Kind: "rule name", What: name}
		}
	}
	id := int32(len(m.rules))
	r := &Rule{ID: id, Name: name, Pool: pool, Type: rtype, MinSize: minSize, MaxSize: maxSize, Steps: append([]Step(nil), steps...)}
	m.rules = append(m.rules, r)
	if name != "" {
		m.ruleIDs[name] = id
	}
	return id, nil
}

func (m *Map) Rule(id int32) (*Rule, bool) {
	if id < 0 || int(id) >= len(m.rules) {
		return nil, false
	}
	return m.rules[id], true
}

func (m *Map) RuleByName(name string) (*Rule, bool) {
	id, ok := m.ruleIDs[name]
	if !ok {
		return nil, false
	}
	return m.Rule(id)
}

func (m *Map) Rules() []*Rule { return m.rules }

// SetRuleName binds name to an already-added rule's id, used by the
// binary codec to restore names from the trailing rule name table
// (spec §4.5: a rule's per-entry fields carry no name; the name lives
// in the separate name table, keyed by rule id).
func (m *Map) SetRuleName(id int32, name string) error {
	rule, ok := m.Rule(id)
	if !ok {
		return &cos.ErrUndefined{Kind: "rule id", Name: fmt.Sprintf("%d", id)}
	}
	if name == "" {
		return nil
	}
	if _, ok := m.ruleIDs[name]; ok {
		return &cos.ErrDuplicate{Kind: "rule name", What: name}
	}
	if rule.Name != "" {
		delete(m.ruleIDs, rule.Name)
	}
	rule.Name = name
	m.ruleIDs[name] = id
	return nil
}

//
// bulk accessors (codec, compiler decompile, JSON dump)
//

// Devices returns every declared device, sorted by id.
func (m *Map) Devices() []*Device {
	out := make([]*Device, 0, len(m.devices))
	for _, d := range m.devices {
		out = append(out, d)
	}
	sortDevicesByID(out)
	return out
}

// Buckets returns every declared bucket, sorted by id descending (-1,
// -2, ... i.e. declaration order for auto-assigned ids).
func (m *Map) Buckets() []*Bucket {
	out := make([]*Bucket, 0, len(m.buckets))
	for _, b := range m.buckets {
		out = append(out, b)
	}
	sortBucketsByID(out)
	return out
}

// Types returns every declared (id > 0) type, sorted by id.
func (m *Map) Types() []Type {
	out := make([]Type, 0, len(m.typeNames))
	for id, name := range m.typeNames {
		out = append(out, Type{ID: id, Name: name})
	}
	sortTypesByID(out)
	return out
}

func sortDevicesByID(d []*Device) {
	for i := 1; i < len(d); i++ {
		for j := i; j > 0 && d[j].ID < d[j-1].ID; j-- {
			d[j], d[j-1] = d[j-1], d[j]
		}
	}
}

func sortBucketsByID(b []*Bucket) {
	for i := 1; i < len(b); i++ {
		for j := i; j > 0 && b[j].ID > b[j-1].ID; j-- {
			b[j], b[j-1] = b[j-1], b[j]
		}
	}
}

func sortTypesByID(t []Type) {
	for i := 1; i < len(t); i++ {
		for j := i; j > 0 && t[j].ID < t[j-1].ID; j-- {
			t[j], t[j-1] = t[j-1], t[j]
		}
	}
}

//
// finalize
//

// Finalize computes every bucket's precomputed tables from its current
// children/weights, validates the forest invariant, and freezes the
// map for concurrent MapPG use (spec §4.3, §5).
//
// Validation completes fully before any bucket's precomputed table is
// replaced, so a failing Finalize leaves the previously-finalized state
// (if any) observable and unchanged (spec §7: "a failing finalize
// leaves the pre-finalize state observable but marked unusable" — here
// "unusable" means finalized is left false until a Finalize call
// succeeds).
func (m *Map) Finalize() error {
	m.finalized = false
	parentOf := make(map[int32]int32, len(m.buckets))
	maxDev := m.maxDevices

	for _, b := range m.buckets {
		for _, c := range b.Children {
			if c >= 0 {
				if _, ok := m.devices[c]; !ok {
					return &cos.ErrInvalidTopology{Reason: fmt.Sprintf("bucket %d references unknown device %d", b.ID, c)}
				}
				if c+1 > maxDev {
					maxDev = c + 1
				}
			} else {
				if _, ok := m.buckets[c]; !ok {
					return &cos.ErrInvalidTopology{Reason: fmt.Sprintf("bucket %d references unknown bucket %d", b.ID, c)}
				}
				if prev, ok := parentOf[c]; ok && prev != b.ID {
					return &cos.ErrInvalidTopology{Reason: fmt.Sprintf("bucket %d has two parents: %d and %d", c, prev, b.ID)}
				}
				parentOf[c] = b.ID
			}
		}
		if b.Kind == KindUniform && b.uniform != nil && b.uniform.finalizedSize != len(b.Children) {
			return &cos.ErrInvalidTopology{Reason: fmt.Sprintf("uniform bucket %d resized after finalize (%d -> %d)", b.ID, b.uniform.finalizedSize, len(b.Children))}
		}
	}

	for _, b := range m.buckets {
		debug.Assertf(len(b.Children) == len(b.Weights),
			"bucket %d: %d children but %d weights", b.ID, len(b.Children), len(b.Weights))
		b.recomputeTotalWeight()
		switch b.Kind {
		case KindUniform:
			b.finalizeUniform()
		case KindList:
			b.finalizeList()
		case KindTree:
			b.finalizeTree()
		case KindStraw:
			b.finalizeStraw()
		}
	}

	m.maxDevices = maxDev
	m.finalized = true
	nlog.Debugf("crush: finalized map with %d devices, %d buckets, %d rules", len(m.devices), len(m.buckets), len(m.rules))
	return nil
}
