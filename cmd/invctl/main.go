package main

import (
	"os"

	"github.com/jhoicas/inventario-audit-api/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
