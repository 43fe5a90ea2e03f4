//go:build !debug

/*
 * Copyright (c) 2018-2026, NVIDIA CORPORATION. All rights reserved.
 */
package debug

func Enabled() bool { return false }

func Assert(cond bool, a ...any)              {}
func Assertf(cond bool, f string, a ...any)   {}
func AssertNoErr(err error)                   {}
func AssertFunc(f func() bool, a ...any)      {}
