// Copyright (C) 2024 self-sensored contributors.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package obslog provides a minimal leveled logger shared across the
// service. Time/date is omitted by default because deployments behind
// systemd or a container runtime usually add their own timestamps.
package obslog

import (
	"fmt"
	"io"
	"log"
	"os"
)

var logDateTime bool

var (
	DebugWriter io.Writer = os.Stderr
	InfoWriter  io.Writer = os.Stderr
	WarnWriter  io.Writer = os.Stderr
	ErrWriter   io.Writer = os.Stderr
)

var (
	DebugPrefix = "<7>[DEBUG] "
	InfoPrefix  = "<6>[INFO]  "
	WarnPrefix  = "<4>[WARN]  "
	ErrPrefix   = "<3>[ERROR] "
)

var (
	debugLog = log.New(DebugWriter, DebugPrefix, 0)
	infoLog  = log.New(InfoWriter, InfoPrefix, 0)
	warnLog  = log.New(WarnWriter, WarnPrefix, log.Lshortfile)
	errLog   = log.New(ErrWriter, ErrPrefix, log.Llongfile)
)

// SetLevel silences writers below lvl ("debug", "info", "warn", "err").
func SetLevel(lvl string) {
	switch lvl {
	case "err", "fatal", "crit":
		InfoWriter = io.Discard
		fallthrough
	case "warn":
		DebugWriter = io.Discard
	case "info":
		DebugWriter = io.Discard
	case "debug":
	default:
		fmt.Fprintf(os.Stderr, "obslog: unknown level %q, using debug\n", lvl)
	}
	rebuild()
}

// SetDateTime toggles date/time prefixes on every log line.
func SetDateTime(on bool) {
	logDateTime = on
	rebuild()
}

func rebuild() {
	flags := 0
	shortFlags := log.Lshortfile
	longFlags := log.Llongfile
	if logDateTime {
		flags = log.LstdFlags
		shortFlags |= log.LstdFlags
		longFlags |= log.LstdFlags
	}
	debugLog = log.New(DebugWriter, DebugPrefix, flags)
	infoLog = log.New(InfoWriter, InfoPrefix, flags)
	warnLog = log.New(WarnWriter, WarnPrefix, shortFlags)
	errLog = log.New(ErrWriter, ErrPrefix, longFlags)
}

func Debugf(format string, v ...interface{}) { _ = debugLog.Output(2, fmt.Sprintf(format, v...)) }
func Infof(format string, v ...interface{})  { _ = infoLog.Output(2, fmt.Sprintf(format, v...)) }
func Warnf(format string, v ...interface{})  { _ = warnLog.Output(2, fmt.Sprintf(format, v...)) }
func Errorf(format string, v ...interface{}) { _ = errLog.Output(2, fmt.Sprintf(format, v...)) }

func Info(v ...interface{})  { _ = infoLog.Output(2, fmt.Sprint(v...)) }
func Warn(v ...interface{})  { _ = warnLog.Output(2, fmt.Sprint(v...)) }
func Error(v ...interface{}) { _ = errLog.Output(2, fmt.Sprint(v...)) }

// Fatalf logs and exits the process, mirroring the teacher's use of
// log.Fatal for unrecoverable start-up errors.
func Fatalf(format string, v ...interface{}) {
	_ = errLog.Output(2, fmt.Sprintf(format, v...))
	os.Exit(1)
}
