package main

import "github.com/mcoot/paddlegame/internal/cli"

func main() {
	cli.Execute()
}
