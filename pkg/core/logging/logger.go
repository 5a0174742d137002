// ============================================================================
// paramval - Parametric Value Layer
// ============================================================================
//
// Package:     logging
// Description: Log levels as named in configuration files
// Author:      Mike Stoffels
// Created:     2026-09-24
// License:     MIT
// ============================================================================

package logging

import (
	"strings"

	pvlog "github.com/msto63/paramval/foundation/core/log"
)

// Level is a configuration-level severity
type Level int

const (
	LevelTrace Level = iota
	LevelDebug
	LevelInfo
	LevelWarn
	LevelError
	LevelFatal
)

var levelNames = map[Level]string{
	LevelTrace: "trace",
	LevelDebug: "debug",
	LevelInfo:  "info",
	LevelWarn:  "warn",
	LevelError: "error",
	LevelFatal: "fatal",
}

// String returns the configuration name of the level
func (l Level) String() string {
	if name, ok := levelNames[l]; ok {
		return name
	}
	return "unknown"
}

// ParseLevel reads a level name; "warning" is accepted for warn. Unknown
// names fall back to info.
func ParseLevel(name string) Level {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "warning" {
		return LevelWarn
	}
	for l, n := range levelNames {
		if n == name {
			return l
		}
	}
	return LevelInfo
}

// foundation maps the level onto the Foundation logger
func (l Level) foundation() pvlog.Level {
	switch l {
	case LevelTrace:
		return pvlog.LevelTrace
	case LevelDebug:
		return pvlog.LevelDebug
	case LevelWarn:
		return pvlog.LevelWarn
	case LevelError:
		return pvlog.LevelError
	case LevelFatal:
		return pvlog.LevelFatal
	}
	return pvlog.LevelInfo
}
