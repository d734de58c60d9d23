package main

import "github.com/LeJamon/goExilon/internal/cli"

func main() {
	cli.Execute()
}
