// Package ui writes human-facing status lines to stderr. Heartbeat runs are
// typically non-interactive, so status chatter is suppressed unless stderr is
// a terminal or verbose mode is forced; only stdout carries machine output.
package ui

import (
	"fmt"
	"os"

	"golang.org/x/term"
)

var verbose bool

// SetVerbose forces status output on even when stderr is not a terminal.
func SetVerbose(v bool) {
	verbose = v
}

// IsTTY returns true if stderr is connected to a terminal.
func IsTTY() bool {
	return term.IsTerminal(int(os.Stderr.Fd()))
}

// Statusf prints a progress line to stderr when running interactively or in
// verbose mode. Errors never go through here; see Errorf.
func Statusf(format string, args ...any) {
	if !verbose && !IsTTY() {
		return
	}
	fmt.Fprintf(os.Stderr, format+"\n", args...)
}

// Errorf prints a diagnostic to stderr unconditionally.
func Errorf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
}
