package main

import "github.com/akranjan/facemark/cmd"

func main() {
	cmd.Execute()
}
