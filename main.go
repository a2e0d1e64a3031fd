package main

import (
	"github.com/averlane/shortener/cmd"

	// Subcommands register themselves with the root command in init().
	_ "github.com/averlane/shortener/cmd/cli"
	_ "github.com/averlane/shortener/cmd/server"
)

func main() {
	cmd.Execute()
}
