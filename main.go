package main

import "github.com/aouyang1/flickrframe/cmd"

func main() {
	cmd.Execute()
}
