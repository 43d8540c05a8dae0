// Package debug provides a global toggle for per-frame debug output
package debug

import (
	"fmt"
	"io"
	"os"
)

// Enabled controls whether debug output is active
var Enabled bool

// Output is where debug lines go. Stderr keeps them away from the prompt.
var Output io.Writer = os.Stderr

// Log prints a message only if debug mode is enabled
func Log(format string, args ...interface{}) {
	if Enabled {
		fmt.Fprintf(Output, format, args...)
	}
}
