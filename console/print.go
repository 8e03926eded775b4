// Copyright (c) WithSecure Corporation
// https://foundry.withsecure.com
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package console

import (
	"fmt"
	"io"
)

type output struct{}

// Output writes to whichever console is active at the time of each write.
var Output io.Writer = output{}

func (output) Write(p []byte) (int, error) {
	return Current().Write(p)
}

// Print formats using the default formats and writes to the active console.
func Print(a ...interface{}) {
	fmt.Fprint(Current(), a...)
}

// Println formats using the default formats and writes to the active
// console, followed by a newline.
func Println(a ...interface{}) {
	fmt.Fprintln(Current(), a...)
}

// Printf formats according to a format specifier and writes to the active
// console.
func Printf(format string, a ...interface{}) {
	fmt.Fprintf(Current(), format, a...)
}
