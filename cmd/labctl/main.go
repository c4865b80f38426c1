// Command labctl runs labplan tools from the shell, either in-process or
// against a running labplan daemon over gRPC.
package main

import (
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
