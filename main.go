package main

import "github.com/symnet/etsm/cmd"

func main() {
	cmd.Execute()
}
