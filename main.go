package main

import "github.com/frahmantamala/campus-resources/cmd"

func main() {
	cmd.Execute()
}
