package main

import "mcpconform/cmd"

// version can be overridden at build time with -ldflags.
var version = "dev"

func main() {
	cmd.SetVersion(version)
	cmd.Execute()
}
