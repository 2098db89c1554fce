package main

import "github.com/ahamilton/octochip/cmd"

func main() {
	cmd.Execute()
}
