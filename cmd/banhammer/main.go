package main

import (
	"github.com/relayguard/banhammer/cmd/banhammer/cmd"
)

func main() {
	cmd.Execute()
}
