package main

import (
	"os"

	"horse.fit/ecmgraph/internal/app"
)

func main() {
	os.Exit(app.Run(os.Args[1:]))
}
