package main

import "github.com/mkmn/cf/cmd"

func main() {
	cmd.Execute()
}
