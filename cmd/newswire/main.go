// ABOUTME: Command-line entry point for one-shot fetches and archives
// ABOUTME: Runs the engine without the HTTP surface or the scheduler

package main

import "os"

func main() {
	if err := Execute(); err != nil {
		os.Exit(1)
	}
}
