package main

import (
	"os"

	"github.com/shanchengnb/fire-egine-dispatch/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
