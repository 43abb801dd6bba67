package main

import "github.com/asleep-ai/skills/internal/cli"

func main() {
	cli.Execute()
}
