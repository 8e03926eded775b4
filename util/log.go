// Copyright (c) WithSecure Corporation
// https://foundry.withsecure.com
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package util

import (
	"bytes"
	"io"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const outputLimit = 1024
const flushChr = 0x0a // \n

// LineWriter buffers output and forwards it on each newline or once more
// than 1KB is pending, so that log lines reach the console whole.
type LineWriter struct {
	Out io.Writer

	buf bytes.Buffer
}

func (w *LineWriter) Write(p []byte) (n int, err error) {
	for _, c := range p {
		w.buf.WriteByte(c)

		if c == flushChr || w.buf.Len() > outputLimit {
			if err = w.Sync(); err != nil {
				return
			}
		}
	}

	return len(p), nil
}

// Sync forwards any pending output.
func (w *LineWriter) Sync() (err error) {
	if w.buf.Len() == 0 {
		return
	}

	_, err = w.Out.Write(w.buf.Bytes())
	w.buf.Reset()

	return
}

// NewLogger returns a console encoded logger writing to out. Bare metal
// targets have no wall clock, entries carry no timestamp.
//
// Development loggers enable debug level entries and caller annotations.
func NewLogger(out io.Writer, development bool) *zap.SugaredLogger {
	cfg := zapcore.EncoderConfig{
		MessageKey:       "msg",
		LevelKey:         "level",
		NameKey:          "logger",
		EncodeLevel:      zapcore.CapitalLevelEncoder,
		EncodeCaller:     zapcore.ShortCallerEncoder,
		EncodeDuration:   zapcore.StringDurationEncoder,
		LineEnding:       zapcore.DefaultLineEnding,
		ConsoleSeparator: " ",
	}

	level := zapcore.InfoLevel
	var opts []zap.Option

	if development {
		level = zapcore.DebugLevel
		cfg.CallerKey = "caller"
		opts = append(opts, zap.AddCaller(), zap.Development())
	}

	core := zapcore.NewCore(zapcore.NewConsoleEncoder(cfg), &LineWriter{Out: out}, level)

	return zap.New(core, opts...).Sugar()
}

// Logger returns a logger writing to out, development mode is selected with
// the `debug` build tag.
func Logger(out io.Writer) *zap.SugaredLogger {
	return NewLogger(out, Debug)
}
