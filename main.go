package main

import "github/smartkit/relay/cmd"

func main() {
	cmd.Execute()
}
