package main

import (
	"os"

	"github.com/innkeep/localize/internal/app"
)

func main() {
	os.Exit(app.Run(os.Args[1:]))
}
