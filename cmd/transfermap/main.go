package main

import (
	"transfermap-backend/cmd/transfermap/cmd"
)

func main() {
	cmd.Execute()
}
