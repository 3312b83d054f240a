//go:build windows

package main

import "syscall"

// manageConsole detaches from the console unless debug output was asked
// for, so a GUI launch does not keep an empty console window around.
func manageConsole(debug bool) {
	if debug {
		return
	}
	kernel32 := syscall.NewLazyDLL("kernel32.dll")
	kernel32.NewProc("FreeConsole").Call()
}
