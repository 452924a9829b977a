package main

import "github.com/syndic-app/syndic/internal/cli"

func main() {
	cli.Execute()
}
