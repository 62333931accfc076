package main

import (
	"os"

	"github.com/JetBrains/jbrdiff/cmd"
)

func main() {
	os.Exit(cmd.Run())
}
