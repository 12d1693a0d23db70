package main

import (
	"os"

	"github.com/tkingovr/apigate/cmd/apigate/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
