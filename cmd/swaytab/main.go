package main

import "github.com/bryanchriswhite/swaytab/cmd/swaytab/commands"

func main() {
	commands.Execute()
}
