package main

import (
	"github.com/dshills/commitgate/internal/cli"
	"github.com/dshills/commitgate/internal/exitctl"
)

func main() {
	ctl := exitctl.New()
	ctl.Exit(cli.Run(ctl))
}
