// Package nlog is the placement engine's leveled logging facade. It
// keeps the call-site idiom of the teacher's cmn/nlog (Infof/Warningf/
// Errorf, package-level functions, no logger value threaded through
// call chains) but is backed by logrus rather than a hand-rolled
// buffering/rotation engine, since this library has no daemon log-file
// lifecycle to manage (see SPEC_FULL.md §5).
/*
 * Copyright (c) 2018-2026, NVIDIA CORPORATION. All rights reserved.
 */
package nlog

import (
	"os"

	"github.com/sirupsen/logrus"
)

var std = newLogger()

func newLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(os.Stderr)
	l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	l.SetLevel(logrus.InfoLevel)
	return l
}

// SetLevel adjusts verbosity; 0 = Info, 1+ = Debug, matching crushtool's
// repeatable -v flag (see cmd/crushtool).
func SetLevel(verbosity int) {
	if verbosity <= 0 {
		std.SetLevel(logrus.InfoLevel)
	} else {
		std.SetLevel(logrus.DebugLevel)
	}
}

func Infof(format string, args ...any)    { std.Infof(format, args...) }
func Warningf(format string, args ...any) { std.Warnf(format, args...) }
func Errorf(format string, args ...any)   { std.Errorf(format, args...) }
func Debugf(format string, args ...any)   { std.Debugf(format, args...) }

func Infoln(args ...any)    { std.Infoln(args...) }
func Warningln(args ...any) { std.Warnln(args...) }
func Errorln(args ...any)   { std.Errorln(args...) }
