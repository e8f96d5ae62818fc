package main

import "github.com/snowyegret23/godot-translation-file-tool/internal/cli"

func main() {
	cli.Execute()
}
