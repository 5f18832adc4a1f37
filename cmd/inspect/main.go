// Command inspect serves the debug inspector over a set of demo objects.
//
//	inspect serve --config config.yaml
//	curl localhost:8089/objects/requests
package main

import (
	"fmt"
	"os"

	"github.com/iocgo/injector/cobra"
)

var version = "dev"

func main() {
	root := cobra.ICobraWrapper(&struct{}{}, fmt.Sprintf(`{
		"Use": "inspect",
		"Short": "Inspect and mutate unexported object state over HTTP",
		"Version": %q,
		"SilenceUsage": true
	}`, version), cobra.ICobraWrapper(&serve{Config: "config.yaml"}, `{
		"Use": "serve",
		"Short": "Serve the inspector",
		"Run": "Run"
	}`))

	if err := root.Command().Execute(); err != nil {
		os.Exit(1)
	}
}
