package main

import "github.com/reallyoldfogie/mp-replay-go/internal/cli"

func main() {
	cli.Execute()
}
