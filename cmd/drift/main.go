package main

import "github.com/driftfm/drift/internal/cli"

func main() {
	cli.Execute()
}
