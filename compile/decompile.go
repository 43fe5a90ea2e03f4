/*
 * Copyright (c) 2018-2026, NVIDIA CORPORATION. All rights reserved.
 */
package compile

import (
	"fmt"
	"strings"

	"github.com/isabella232/libcrush/crush"
)

// Decompile renders m back into the text authoring format (spec §6),
// in declaration order (devices, types, buckets, rules) so that
// Compile(Decompile(m)) reproduces an equivalent map (spec §8 scenario
// e: "compile, decompile, recompile" round trip).
func Decompile(m *crush.Map) string {
	var sb strings.Builder
	names := newNamer(m)

	for _, d := range m.Devices() {
		sb.WriteString(fmt.Sprintf("device %d %s", d.ID, names.item(d.ID)))
		if d.Offload > 0 {
			sb.WriteString(fmt.Sprintf(" offload %s", d.Offload.String()))
		}
		sb.WriteByte('\n')
	}
	if len(m.Devices()) > 0 {
		sb.WriteByte('\n')
	}

	for _, t := range m.Types() {
		sb.WriteString(fmt.Sprintf("type %d %s\n", t.ID, t.Name))
	}
	if len(m.Types()) > 0 {
		sb.WriteByte('\n')
	}

	for _, b := range m.Buckets() {
		typeName, _ := m.TypeName(b.TypeID)
		sb.WriteString(fmt.Sprintf("%s %s {\n", typeName, names.item(b.ID)))
		sb.WriteString(fmt.Sprintf("  id %d\n", b.ID))
		sb.WriteString(fmt.Sprintf("  alg %s\n", b.Kind.String()))
		for i, child := range b.Children {
			sb.WriteString(fmt.Sprintf("  item %s weight %s\n", names.item(child), b.Weights[i].String()))
		}
		sb.WriteString("}\n\n")
	}

	for _, r := range m.Rules() {
		sb.WriteString(fmt.Sprintf("rule %s {\n", r.Name))
		sb.WriteString(fmt.Sprintf("  pool %d\n", r.Pool))
		sb.WriteString(fmt.Sprintf("  type %s\n", r.Type.String()))
		sb.WriteString(fmt.Sprintf("  min_size %d\n", r.MinSize))
		sb.WriteString(fmt.Sprintf("  max_size %d\n", r.MaxSize))
		for _, step := range r.Steps {
			sb.WriteString("  " + decompileStep(m, names, step) + "\n")
		}
		sb.WriteString("}\n\n")
	}

	return sb.String()
}

func decompileStep(m *crush.Map, names *namer, step crush.Step) string {
	switch step.Op {
	case crush.OpTake:
		return fmt.Sprintf("step take %s", names.item(step.Arg1))
	case crush.OpEmit:
		return "step emit"
	case crush.OpChooseFirstN, crush.OpChooseIndep, crush.OpChooseLeafFirstN, crush.OpChooseLeafIndep:
		verb := "choose"
		if step.Op == crush.OpChooseLeafFirstN || step.Op == crush.OpChooseLeafIndep {
			verb = "chooseleaf"
		}
		mode := "firstn"
		if step.Op == crush.OpChooseIndep || step.Op == crush.OpChooseLeafIndep {
			mode = "indep"
		}
		typeName := "device"
		if step.Arg2 != crush.DeviceTypeID {
			if n, ok := m.TypeName(step.Arg2); ok {
				typeName = n
			}
		}
		return fmt.Sprintf("step %s %s %d type %s", verb, mode, step.Arg1, typeName)
	default:
		return "step noop"
	}
}

// namer synthesizes a stable placeholder name ("device<id>" /
// "bucket<-id>") for any item the map never named, so decompiled text
// always has a name token for every reference even if the original was
// built (e.g. via the binary codec) without one.
type namer struct {
	m *crush.Map
}

func newNamer(m *crush.Map) *namer { return &namer{m: m} }

func (n *namer) item(id int32) string {
	if name, ok := n.m.ItemName(id); ok && name != "" {
		return name
	}
	if id >= 0 {
		return fmt.Sprintf("device%d", id)
	}
	return fmt.Sprintf("bucket%d", -id)
}
