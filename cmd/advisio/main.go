package main

import (
	"github.com/advisio/advisio/internal/cli"
	"github.com/advisio/advisio/internal/common/logtrace"
)

func init() {
	logtrace.InitLogger()
	logtrace.SetQuiet()
}

func main() {
	cli.Execute()
}
