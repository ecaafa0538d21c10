package main

import "github.com/framecut/framecut/cmd"

func main() {
	cmd.Execute()
}
