/*
 * Copyright (c) 2018-2026, NVIDIA CORPORATION. All rights reserved.
 */
package compile

import "github.com/isabella232/libcrush/crush"

// Compile parses src (the contents of file, used only for error
// messages) and returns a finalized *crush.Map, or a line-qualified
// *cos.ErrParse / typed crush error on the first failure (spec §4.5,
// §7: "the compiler's only responsibility is to parse, resolve names,
// build a map, and call finalize").
func Compile(file, src string) (*crush.Map, error) {
	ctx := NewContext(file)
	ctx.toks = Lex(src)
	for !ctx.atEnd() {
		if err := ctx.parseTopLevel(); err != nil {
			return nil, err
		}
	}
	if err := ctx.Map.Finalize(); err != nil {
		return nil, err
	}
	return ctx.Map, nil
}
