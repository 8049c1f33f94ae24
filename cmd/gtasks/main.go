package main

import (
	"github.com/custodia-labs/gtasks-cli/internal/adapters/driving/cli"
)

func main() {
	cli.Execute()
}
