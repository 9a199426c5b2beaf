package main

import "github.com/bryanchriswhite/platwin/cmd/platwin/commands"

func main() {
	commands.Execute()
}
