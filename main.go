package main

import "github.com/corralworks/corral/cmd"

func main() {
	cmd.Execute()
}
