// Package main is the entry point for the lara downloader.
package main

import (
	"github.com/samber/lo"

	"github.com/blaqmajik/laracasts-downloader/cmd"
	"github.com/blaqmajik/laracasts-downloader/config"
	"github.com/blaqmajik/laracasts-downloader/log"
)

func main() {
	lo.Must0(config.Setup())
	lo.Must0(log.Setup())

	cmd.Execute()
}
