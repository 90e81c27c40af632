package main

import (
	"os"

	"github.com/bnema/poolrdp/cmd"
)

func main() {
	os.Exit(cmd.ExitCode(cmd.Execute()))
}
