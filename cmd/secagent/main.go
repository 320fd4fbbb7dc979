package main

import (
	"os"

	"secagent/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
