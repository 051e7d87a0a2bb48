package main

import (
	"runtime/debug"

	"github.com/praetorian-inc/blackcat/cmd"
)

func main() {
	debug.SetMaxThreads(20000)
	cmd.Execute()
}
