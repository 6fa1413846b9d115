// Copyright 2026 The confkit Authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package view builds the CLI's loggers and user-facing output helpers.
package view

import (
	"io"
	"log/slog"
	"time"

	"github.com/fatih/color"
	"github.com/lmittmann/tint"
)

// rewriteLogLevel colors level labels for the human handler.
func rewriteLogLevel(groups []string, a slog.Attr) slog.Attr {
	if a.Key == slog.LevelKey && len(groups) == 0 {
		level := a.Value.Any().(slog.Level)

		var levelText string
		switch {
		case level >= slog.LevelError:
			levelText = color.RedString("ERROR")
		case level >= slog.LevelWarn:
			levelText = color.YellowString("WARN")
		case level >= slog.LevelInfo:
			levelText = color.GreenString("INFO")
		default:
			levelText = "DEBUG"
		}
		a.Value = slog.StringValue(levelText)
	}
	return a
}

// NewHumanLogger returns a tinted, human-oriented logger.
func NewHumanLogger(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(tint.NewHandler(w, &tint.Options{
		Level:       level,
		TimeFormat:  time.Kitchen,
		ReplaceAttr: rewriteLogLevel,
	}))
}

// NewJSONLogger returns a line-oriented JSON logger for machine
// consumption.
func NewJSONLogger(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level}))
}

// NewLogger picks a handler by output format.
func NewLogger(w io.Writer, level slog.Level, json bool) *slog.Logger {
	if json {
		return NewJSONLogger(w, level)
	}
	return NewHumanLogger(w, level)
}
