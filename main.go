package main

import "minnow/cmd"

func main() {
	cmd.Execute()
}
