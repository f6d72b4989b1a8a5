// Command journal is the trade journal CLI.
package main

import (
	"context"
	"fmt"
	"os"

	"trade-journal/internal/cli"
)

func main() {
	root := cli.NewRootCmd()
	if err := root.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
