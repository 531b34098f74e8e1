// Command txroutertool is a small end-to-end demonstration harness for
// pkg/txrouter, grounded on the teacher's examples/admin_client and
// examples/manual_committing: it drives a session through one of the
// spec's worked scenarios against in-process shardfake shards and
// prints the reporter dump taken after commit.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	root := &cobra.Command{
		Use:   "txroutertool",
		Short: "Drive a transaction router session against fake shards",
	}
	root.AddCommand(newRunCmd())
	root.AddCommand(newInspectCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
