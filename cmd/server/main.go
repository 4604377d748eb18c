// Package main is the skincare-api binary: the HTTP server plus the
// operational subcommands for migrations and tokens.
package main

// version is overridden at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	Execute(version)
}
