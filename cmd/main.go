package main

import "github.com/canopy-network/poh/cmd/cli"

func main() {
	cli.Execute()
}
