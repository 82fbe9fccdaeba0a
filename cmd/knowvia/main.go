package main

import (
	"fmt"
	"os"

	"github.com/knowvia/knowvia-server/internal/app"
)

func main() {
	if err := app.Run(os.Stdout, os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "knowvia: %v\n", err)
		os.Exit(1)
	}
}
