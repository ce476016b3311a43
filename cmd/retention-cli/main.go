package main

import (
	"os"

	"github.com/jengzang/retention-backend-go/internal/cli"
)

func main() {
	os.Exit(int(cli.Run()))
}
