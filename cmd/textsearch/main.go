// Command textsearch indexes documents and answers ranked keyword queries.
package main

import (
	"os"

	"github.com/Adithya-Monish-Kumar-K/textsearch/cmd/textsearch/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
