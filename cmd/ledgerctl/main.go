// Command ledgerctl drives the ledger from a terminal with the same services the BFA serves.
package main

import (
	"os"
)

func main() {
	if err := execute(newRootCmd()); err != nil {
		os.Exit(1)
	}
}
