package main

import "github.com/AneteZepa/HappyBees/cmd"

func main() {
	cmd.Execute()
}
