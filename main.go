package main

import (
	"context"
	"os"

	"github.com/ardnew/chef/cli"
)

func main() {
	err := cli.Run(context.Background(), os.Exit, os.Args[1:]...)
	if err != nil {
		os.Exit(cli.Report(err))
	}
}
