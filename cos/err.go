/*
 * Copyright (c) 2018-2026, NVIDIA CORPORATION. All rights reserved.
 */
package cos

import (
	"fmt"

	"github.com/pkg/errors"
)

// Typed error family for authoring-time (compile/decode) failures. One
// struct per kind, each implementing error, mirroring the teacher's own
// cmn/err.go style (ErrorBucketAlreadyExists, NoMountpathError, ...)
// rather than a single stringly-typed error.

type (
	// ErrParse is a line-qualified textual-input failure.
	ErrParse struct {
		File string
		Line int
		Msg  string
	}

	// ErrUndefined is a reference to an unknown device/type/item/rule.
	ErrUndefined struct {
		Kind string // "item", "type", "rule", ...
		Name string
	}

	// ErrDuplicate is a name or id declared twice.
	ErrDuplicate struct {
		Kind string
		What string
	}

	// ErrInvalidTopology is a broken forest invariant or an unresolved
	// child id discovered at Finalize.
	ErrInvalidTopology struct {
		Reason string
	}

	// ErrInvalidOffload is an offload literal outside [0, 1].
	ErrInvalidOffload struct {
		Value float64
	}

	// ErrCorruptBinary is a codec decode failure at a given byte offset.
	ErrCorruptBinary struct {
		Offset int
		Why    string
	}

	// ErrUnknownVersion is a binary magic that doesn't match any
	// supported version.
	ErrUnknownVersion struct {
		Magic uint32
	}
)

func (e *ErrParse) Error() string {
	return fmt.Sprintf("%s:%d: %s", e.File, e.Line, e.Msg)
}

func (e *ErrUndefined) Error() string {
	return fmt.Sprintf("undefined %s: %q", e.Kind, e.Name)
}

func (e *ErrDuplicate) Error() string {
	return fmt.Sprintf("duplicate %s: %q", e.Kind, e.What)
}

func (e *ErrInvalidTopology) Error() string {
	return fmt.Sprintf("invalid topology: %s", e.Reason)
}

func (e *ErrInvalidOffload) Error() string {
	return fmt.Sprintf("invalid offload %.3f (valid range is [0,1])", e.Value)
}

func (e *ErrCorruptBinary) Error() string {
	return fmt.Sprintf("corrupt binary at offset %d: %s", e.Offset, e.Why)
}

func (e *ErrUnknownVersion) Error() string {
	return fmt.Sprintf("unknown binary magic 0x%08x", e.Magic)
}

// WrapCorrupt wraps an underlying decode error (typically a buffer
// underrun from ByteUnpack) into an ErrCorruptBinary annotated with
// "decode", following the teacher's own github.com/pkg/errors usage in
// ext/dsort/err.go. errors.Cause/errors.Unwrap yield the
// *ErrCorruptBinary; the underlying error itself is not kept, only its
// message, in Why.
func WrapCorrupt(offset int, cause error) error {
	return errors.Wrapf(&ErrCorruptBinary{Offset: offset, Why: cause.Error()}, "decode")
}

// interface guards
var (
	_ error = (*ErrParse)(nil)
	_ error = (*ErrUndefined)(nil)
	_ error = (*ErrDuplicate)(nil)
	_ error = (*ErrInvalidTopology)(nil)
	_ error = (*ErrInvalidOffload)(nil)
	_ error = (*ErrCorruptBinary)(nil)
	_ error = (*ErrUnknownVersion)(nil)
)
