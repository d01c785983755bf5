package main

import (
	"os"

	"github.com/planetscale/joinplan/go/boost/cmd/joinplan/cli"
)

func main() {
	if err := cli.New().Execute(); err != nil {
		os.Exit(1)
	}
}
