/*
 * Copyright (c) 2018-2026, NVIDIA CORPORATION. All rights reserved.
 */
package compile

import (
	"github.com/isabella232/libcrush/cos"
	"github.com/isabella232/libcrush/crush"
)

// parseTopLevel dispatches on the leading token of one top-level form
// (spec §4.5: "device", "type", "<type-name> <bucket-name> { }",
// "rule [name] { }").
func (c *Context) parseTopLevel() error {
	tok, _ := c.peek()
	switch tok.Text {
	case "device":
		return c.parseDevice()
	case "type":
		return c.parseType()
	case "rule":
		return c.parseRule()
	default:
		return c.parseBucket()
	}
}

// parseDevice: `device <id> <name> [offload <f> | load <f> | down]`.
func (c *Context) parseDevice() error {
	if _, err := c.expect("device"); err != nil {
		return err
	}
	id, line, err := c.expectInt("device id")
	if err != nil {
		return err
	}
	nameTok, err := c.expectAny("device name")
	if err != nil {
		return err
	}
	var offload cos.Fixed16_16
	if tok, ok := c.peek(); ok {
		switch tok.Text {
		case "offload", "load":
			c.next()
			f, fline, ferr := c.expectFixed("offload value")
			if ferr != nil {
				return ferr
			}
			if !f.InUnitInterval() {
				return c.errf(fline, "invalid offload %.3f (valid range is [0,1])", f.Float())
			}
			offload = f
		case "down":
			c.next()
			offload = cos.FixedScale
		}
	}
	if err := c.Map.AddDevice(id, nameTok.Text, offload); err != nil {
		return c.errf(line, "%s", err)
	}
	return nil
}

// parseType: `type <id> <name>`.
func (c *Context) parseType() error {
	if _, err := c.expect("type"); err != nil {
		return err
	}
	id, line, err := c.expectInt("type id")
	if err != nil {
		return err
	}
	nameTok, err := c.expectAny("type name")
	if err != nil {
		return err
	}
	if err := c.Map.SetTypeName(id, nameTok.Text); err != nil {
		return c.errf(line, "%s", err)
	}
	return nil
}

type pendingItem struct {
	name   string
	weight cos.Fixed16_16
	pos    int
	hasPos bool
	line   int
}

// parseBucket: `<type-name> <bucket-name> { id <id> alg <kind> item
// <item-name> weight <w> [pos <i>] ... }`.
func (c *Context) parseBucket() error {
	typeTok, err := c.expectAny("bucket type name")
	if err != nil {
		return err
	}
	typeID, ok := c.Map.TypeID(typeTok.Text)
	if !ok {
		return c.errf(typeTok.Line, "undefined type: %q", typeTok.Text)
	}
	nameTok, err := c.expectAny("bucket name")
	if err != nil {
		return err
	}
	if _, err := c.expect("{"); err != nil {
		return err
	}

	var id int32
	var kind crush.Kind
	var kindSet bool
	var items []pendingItem

	for {
		tok, ok := c.peek()
		if !ok {
			return c.errf(c.lastLine(), "unterminated bucket %q", nameTok.Text)
		}
		if tok.Text == "}" {
			c.next()
			break
		}
		switch tok.Text {
		case "id":
			c.next()
			v, _, ierr := c.expectInt("bucket id")
			if ierr != nil {
				return ierr
			}
			id = v
		case "alg":
			c.next()
			kindTok, kerr := c.expectAny("algorithm name")
			if kerr != nil {
				return kerr
			}
			k, okKind := crush.ParseKind(kindTok.Text)
			if !okKind {
				return c.errf(kindTok.Line, "unknown algorithm %q", kindTok.Text)
			}
			kind = k
			kindSet = true
		case "item":
			c.next()
			itemTok, ierr := c.expectAny("item name")
			if ierr != nil {
				return ierr
			}
			if _, werr := c.expect("weight"); werr != nil {
				return werr
			}
			w, wline, werr := c.expectFixed("item weight")
			if werr != nil {
				return werr
			}
			pi := pendingItem{name: itemTok.Text, weight: w, line: wline}
			if peekTok, pok := c.peek(); pok && peekTok.Text == "pos" {
				c.next()
				p, _, perr := c.expectInt("pos")
				if perr != nil {
					return perr
				}
				pi.pos = int(p)
				pi.hasPos = true
			}
			items = append(items, pi)
		default:
			return c.errf(tok.Line, "unknown bucket field %q", tok.Text)
		}
	}

	if !kindSet {
		return c.errf(nameTok.Line, "bucket %q: missing alg", nameTok.Text)
	}

	children, weights, err := c.resolveItems(nameTok, items)
	if err != nil {
		return err
	}

	bid, err := c.Map.AddBucket(id, kind, typeID, children, weights)
	if err != nil {
		return c.errf(nameTok.Line, "%s", err)
	}
	if err := c.Map.SetItemName(bid, nameTok.Text); err != nil {
		return c.errf(nameTok.Line, "%s", err)
	}
	return nil
}

// resolveItems lays out a bucket's children in position order, honoring
// any explicit `pos` (spec §7: "occupied explicit pos" is a named error
// case) and packing the remaining items into the gaps in declaration
// order.
func (c *Context) resolveItems(bucketName Token, items []pendingItem) ([]int32, []cos.Fixed16_16, error) {
	slots := make(map[int]pendingItem)
	var unpositioned []pendingItem
	maxPos := -1
	for _, it := range items {
		if !it.hasPos {
			unpositioned = append(unpositioned, it)
			continue
		}
		if _, taken := slots[it.pos]; taken {
			return nil, nil, c.errf(it.line, "bucket %q: position %d already occupied", bucketName.Text, it.pos)
		}
		slots[it.pos] = it
		if it.pos > maxPos {
			maxPos = it.pos
		}
	}
	next := 0
	for _, it := range unpositioned {
		for {
			if _, taken := slots[next]; !taken {
				break
			}
			next++
		}
		slots[next] = it
		if next > maxPos {
			maxPos = next
		}
		next++
	}

	n := maxPos + 1
	children := make([]int32, n)
	weights := make([]cos.Fixed16_16, n)
	for i := 0; i < n; i++ {
		it, ok := slots[i]
		if !ok {
			return nil, nil, c.errf(bucketName.Line, "bucket %q: position %d is unset", bucketName.Text, i)
		}
		id, idOK := c.Map.ItemID(it.name)
		if !idOK {
			return nil, nil, c.errf(it.line, "undefined item: %q", it.name)
		}
		children[i] = id
		weights[i] = it.weight
	}
	return children, weights, nil
}

// parseRule: `rule [name] { pool <id> type <replicated|raid4> min_size
// <n> max_size <n> step ... }`.
func (c *Context) parseRule() error {
	if _, err := c.expect("rule"); err != nil {
		return err
	}
	name := ""
	if tok, ok := c.peek(); ok && tok.Text != "{" {
		c.next()
		name = tok.Text
	}
	if _, err := c.expect("{"); err != nil {
		return err
	}

	var pool int32
	var rtype crush.RuleType
	var minSize, maxSize int32
	var steps []crush.Step

	for {
		tok, ok := c.peek()
		if !ok {
			return c.errf(c.lastLine(), "unterminated rule %q", name)
		}
		if tok.Text == "}" {
			c.next()
			break
		}
		switch tok.Text {
		case "pool":
			c.next()
			v, _, err := c.expectInt("pool id")
			if err != nil {
				return err
			}
			pool = v
		case "type":
			c.next()
			rtypeTok, err := c.expectAny("rule type")
			if err != nil {
				return err
			}
			switch rtypeTok.Text {
			case "replicated":
				rtype = crush.RuleTypeReplicated
			case "raid4":
				rtype = crush.RuleTypeErasure
			default:
				return c.errf(rtypeTok.Line, "unknown rule type %q", rtypeTok.Text)
			}
		case "min_size":
			c.next()
			v, _, err := c.expectInt("min_size")
			if err != nil {
				return err
			}
			minSize = v
		case "max_size":
			c.next()
			v, _, err := c.expectInt("max_size")
			if err != nil {
				return err
			}
			maxSize = v
		case "step":
			c.next()
			step, err := c.parseStep()
			if err != nil {
				return err
			}
			steps = append(steps, step)
		default:
			return c.errf(tok.Line, "unknown rule field %q", tok.Text)
		}
	}

	if _, err := c.Map.AddRule(name, pool, rtype, minSize, maxSize, steps); err != nil {
		return c.errf(c.lastLine(), "%s", err)
	}
	return nil
}

func (c *Context) parseStep() (crush.Step, error) {
	subTok, err := c.expectAny("step kind")
	if err != nil {
		return crush.Step{}, err
	}
	switch subTok.Text {
	case "take":
		itemTok, ierr := c.expectAny("take item")
		if ierr != nil {
			return crush.Step{}, ierr
		}
		id, ok := c.Map.ItemID(itemTok.Text)
		if !ok {
			return crush.Step{}, c.errf(itemTok.Line, "undefined item: %q", itemTok.Text)
		}
		return crush.TakeStep(id), nil
	case "choose", "chooseleaf":
		mode, n, typeID, perr := c.parseChooseArgs()
		if perr != nil {
			return crush.Step{}, perr
		}
		if subTok.Text == "chooseleaf" {
			return crush.ChooseLeafStep(mode, n, typeID), nil
		}
		return crush.ChooseStep(mode, n, typeID), nil
	case "emit":
		return crush.EmitStep(), nil
	default:
		return crush.Step{}, c.errf(subTok.Line, "unknown step %q", subTok.Text)
	}
}

func (c *Context) parseChooseArgs() (crush.Mode, int32, int32, error) {
	modeTok, err := c.expectAny("choose mode")
	if err != nil {
		return 0, 0, 0, err
	}
	var mode crush.Mode
	switch modeTok.Text {
	case "firstn":
		mode = crush.ModeFirstN
	case "indep":
		mode = crush.ModeIndep
	default:
		return 0, 0, 0, c.errf(modeTok.Line, "unknown choose mode %q", modeTok.Text)
	}
	n, _, nerr := c.expectInt("choose count")
	if nerr != nil {
		return 0, 0, 0, nerr
	}
	if _, terr := c.expect("type"); terr != nil {
		return 0, 0, 0, terr
	}
	typeTok, terr := c.expectAny("choose target type")
	if terr != nil {
		return 0, 0, 0, terr
	}
	if typeTok.Text == "device" {
		return mode, n, crush.DeviceTypeID, nil
	}
	typeID, ok := c.Map.TypeID(typeTok.Text)
	if !ok {
		return 0, 0, 0, c.errf(typeTok.Line, "undefined type: %q", typeTok.Text)
	}
	return mode, n, typeID, nil
}
