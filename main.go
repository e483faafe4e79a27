package main

import "github.com/kevinaugment/laserspechub/cmd"

func main() {
	cmd.Execute()
}
