package main

import (
	"github.com/bookdex/bookdex/cmd"
)

// execute is a variable to allow overriding in tests
var execute = cmd.Execute

func main() {
	execute()
}
