//go:build debug

// Package debug provides build-tagged invariant checks that compile to
// no-ops (see debug_off.go) unless built with `-tags debug`.
/*
 * Copyright (c) 2018-2026, NVIDIA CORPORATION. All rights reserved.
 */
package debug

import "fmt"

func Enabled() bool { return true }

func Assert(cond bool, a ...any) {
	if !cond {
		if len(a) > 0 {
			panic("DEBUG PANIC: " + fmt.Sprint(a...))
		}
		panic("DEBUG PANIC")
	}
}

func Assertf(cond bool, f string, a ...any) {
	if !cond {
		panic("DEBUG PANIC: " + fmt.Sprintf(f, a...))
	}
}

func AssertNoErr(err error) {
	if err != nil {
		panic(err)
	}
}

func AssertFunc(f func() bool, a ...any) { Assert(f(), a...) }
