/*
 * Copyright (c) 2018-2026, NVIDIA CORPORATION. All rights reserved.
 */
package compile

import (
	"fmt"
	"strconv"

	"github.com/isabella232/libcrush/cos"
	"github.com/isabella232/libcrush/crush"
)

// Context threads parser state explicitly through a single compile
// call: the token stream, current position, the file name (for error
// messages), and the crush.Map being built. Per spec §9's "Mutable
// global parser state" redesign flag, this replaces the original
// compiler's process-wide name tables with a value the caller owns —
// two Contexts never interfere, and nothing survives between compiles.
type Context struct {
	File string
	toks []Token
	pos  int
	Map  *crush.Map
}

// NewContext creates an empty Context bound to file (used only for
// error messages) with a fresh, empty crush.Map.
func NewContext(file string) *Context {
	return &Context{File: file, Map: crush.NewMap()}
}

func (c *Context) atEnd() bool { return c.pos >= len(c.toks) }

func (c *Context) peek() (Token, bool) {
	if c.atEnd() {
		return Token{}, false
	}
	return c.toks[c.pos], true
}

func (c *Context) next() (Token, bool) {
	tok, ok := c.peek()
	if ok {
		c.pos++
	}
	return tok, ok
}

// lastLine returns the line of the most recently consumed token, or 1
// if nothing has been consumed yet (used to locate "unexpected EOF"
// errors as close as possible to where they occurred).
func (c *Context) lastLine() int {
	if c.pos == 0 {
		return 1
	}
	return c.toks[c.pos-1].Line
}

func (c *Context) errf(line int, format string, args ...any) error {
	return &cos.ErrParse{File: c.File, Line: line, Msg: fmt.Sprintf(format, args...)}
}

// expect consumes and returns the next token, requiring its text equal
// want.
func (c *Context) expect(want string) (Token, error) {
	tok, ok := c.next()
	if !ok {
		return Token{}, c.errf(c.lastLine(), "expected %q, got end of input", want)
	}
	if tok.Text != want {
		return Token{}, c.errf(tok.Line, "expected %q, got %q", want, tok.Text)
	}
	return tok, nil
}

// expectAny consumes and returns the next token, requiring it to be
// non-empty (i.e. not end of input).
func (c *Context) expectAny(what string) (Token, error) {
	tok, ok := c.next()
	if !ok {
		return Token{}, c.errf(c.lastLine(), "expected %s, got end of input", what)
	}
	return tok, nil
}

func (c *Context) expectInt(what string) (int32, int, error) {
	tok, err := c.expectAny(what)
	if err != nil {
		return 0, 0, err
	}
	n, perr := strconv.Atoi(tok.Text)
	if perr != nil {
		return 0, 0, c.errf(tok.Line, "expected integer %s, got %q", what, tok.Text)
	}
	return int32(n), tok.Line, nil
}

func (c *Context) expectFixed(what string) (cos.Fixed16_16, int, error) {
	tok, err := c.expectAny(what)
	if err != nil {
		return 0, 0, err
	}
	f, perr := cos.ParseFixed(tok.Text)
	if perr != nil {
		return 0, 0, c.errf(tok.Line, "expected decimal %s, got %q", what, tok.Text)
	}
	return f, tok.Line, nil
}
