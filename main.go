package main

import "github.com/mmuldo/inkdither/cmd"

func main() {
	cmd.Execute()
}
