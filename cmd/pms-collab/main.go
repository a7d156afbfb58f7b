package main

import (
	"fmt"
	"os"

	"kyri56xcaesar/pms-collab/internal/server"
)

// Version information set via ldflags
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	if len(os.Args) > 1 && (os.Args[1] == "--version" || os.Args[1] == "-v") {
		fmt.Printf("pms-collab %s (commit: %s, built: %s)\n", version, commit, date)
		os.Exit(0)
	}

	confPath := "configs/collab.env"
	if len(os.Args) > 1 {
		confPath = os.Args[1]
	}

	server.InitAndServe(confPath)
}
