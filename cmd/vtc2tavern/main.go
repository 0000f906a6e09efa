package main

import (
	"os"

	"github.com/frherrer/vtc2tavern/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
