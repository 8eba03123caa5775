// ABOUTME: Entry point for the voicemix CLI
// ABOUTME: Hands off to the cobra command tree
package main

import "os"

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
