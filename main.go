package main

import "github.com/gem-enterprise/gemhub/commands"

func main() {
	commands.Execute()
}
