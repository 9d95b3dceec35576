package main

import "bob/internal/cli"

func main() {
	cli.Execute()
}
