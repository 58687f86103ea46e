package main

import "charon/cmd"

func main() {
	cmd.Execute()
}
