package main

import (
	"os"

	"github.com/Mauro-Remeseiro/AEAT-Sender/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
