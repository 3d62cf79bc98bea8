package main

import "github.com/liuxd6825/pageflow/cmd"

func main() {
	cmd.Execute()
}
