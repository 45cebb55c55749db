// Package main provides the linkrot CLI entrypoint.
package main

import (
	"os"

	"github.com/lukemcguire/linkrot/cmd"
)

func main() {
	os.Exit(cmd.Execute())
}
