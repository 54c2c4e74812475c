package main

import "github.com/nrc/cargo-edit/cmd"

func main() {
	cmd.Execute()
}
