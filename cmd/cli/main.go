package main

import (
	"github.com/qactl/qactl/pkg/cli"
)

func main() {
	cli.Execute()
}
