package main

import (
	"fmt"
	"os"

	"github.com/TrevorS/circcoords/internal/cli"
)

var version = "dev"

func main() {
	if err := cli.New(version).Run(); err != nil {
		fmt.Fprintln(os.Stderr, "circcoords:", err)
		os.Exit(1)
	}
}
