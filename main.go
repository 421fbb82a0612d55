package main

import "github.com/transport-data/tools/cmd"

func main() {
	cmd.Execute()
}
