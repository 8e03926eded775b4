// Copyright (c) WithSecure Corporation
// https://foundry.withsecure.com
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package util

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// recorder stores each Write call separately.
type recorder struct {
	writes []string
}

func (r *recorder) Write(p []byte) (int, error) {
	r.writes = append(r.writes, string(p))
	return len(p), nil
}

func TestLineWriterFlushesOnNewline(t *testing.T) {
	out := &recorder{}
	w := &LineWriter{Out: out}

	w.Write([]byte("[ML] Requ"))
	require.Empty(t, out.writes)

	w.Write([]byte("esting binary\nnext"))
	require.Equal(t, []string{"[ML] Requesting binary\n"}, out.writes)

	require.NoError(t, w.Sync())
	require.Equal(t, []string{"[ML] Requesting binary\n", "next"}, out.writes)

	// nothing pending
	require.NoError(t, w.Sync())
	require.Len(t, out.writes, 2)
}

func TestLineWriterFlushesOnLimit(t *testing.T) {
	out := &recorder{}
	w := &LineWriter{Out: out}

	w.Write(bytes.Repeat([]byte{'x'}, outputLimit+1))

	require.Len(t, out.writes, 1)
	require.Len(t, out.writes[0], outputLimit+1)
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer

	log := NewLogger(&buf, false)
	log.Debugf("hidden")
	log.Infow("drivers loaded", "count", 2)

	require.Equal(t, "INFO drivers loaded {\"count\": 2}\n", buf.String())

	buf.Reset()

	log = NewLogger(&buf, true)
	log.Debugf("shown %d", 1)

	require.True(t, strings.HasPrefix(buf.String(), "DEBUG "))
	require.Contains(t, buf.String(), "log_test.go")
	require.Contains(t, buf.String(), "shown 1")
}
