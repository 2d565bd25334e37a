// main is the entry point for the repometrics CLI.
package main

import (
	"fmt"
	"os"

	"github.com/huangsam/repometrics/cmd"
	"github.com/huangsam/repometrics/internal/iocache"
)

func main() {
	code := run()
	os.Exit(code)
}

// run executes the root command and releases global resources before exit.
func run() int {
	defer iocache.CloseStores()
	defer cmd.SyncLogger()
	defer func() {
		if err := cmd.StopProfiling(); err != nil {
			fmt.Fprintln(os.Stderr, "⚠️  Failed to stop profiling:", err)
		}
	}()

	if err := cmd.Execute(); err != nil {
		fmt.Println("❌", err)
		return 1
	}
	return 0
}
