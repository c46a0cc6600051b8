// Package main is the single-binary entrypoint for Lattice,
// a peer-to-peer network node with a persistent peer-reputation gate.
package main

import "github.com/lattice-network/lattice/internal/cli"

// version is set at build time via -ldflags.
var version = "dev"

func main() {
	cli.Execute(version)
}
