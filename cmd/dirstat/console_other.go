//go:build !windows

package main

func manageConsole(bool) {}
