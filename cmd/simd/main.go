// simd runs fly-and-charge scenarios: it loads a scenario file, steps the
// world at a fixed tick rate, and optionally serves live snapshots and
// metrics over HTTP.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	root := &cobra.Command{
		Use:           "simd",
		Short:         "UAV directive-execution simulator",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newRunCommand())
	root.AddCommand(newSchemaCommand())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
