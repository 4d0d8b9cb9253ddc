package main

import (
	"github.com/arlaunch/arlaunch/cmd"
)

func main() {
	cmd.Execute()
}
