package main

import (
	"github.com/robotalks/mculink/pkg/cli/sh"
)

func main() {
	sh.Main()
}
