package main

import (
	"os"

	"github.com/crossgen/crossgen/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
