package main

import "github.com/pfrederiksen/aqua-events/internal/cli"

func main() {
	cli.Execute()
}
