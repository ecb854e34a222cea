package main

import (
	"sentisounds/cmd"
)

func main() {
	cmd.Execute()
}
