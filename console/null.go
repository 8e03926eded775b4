// Copyright (c) WithSecure Corporation
// https://foundry.withsecure.com
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package console

type nullConsole struct{}

// Null is the inert console, it discards output and never has input.
var Null All = nullConsole{}

func (nullConsole) Write(p []byte) (int, error) {
	return len(p), nil
}

func (nullConsole) WriteChar(_ byte) {}

func (nullConsole) Flush() {}

func (nullConsole) ReadChar() (byte, error) {
	return 0, ErrNoData
}

func (nullConsole) ClearRx() {}

func (nullConsole) CharsWritten() int {
	return 0
}

func (nullConsole) CharsRead() int {
	return 0
}
