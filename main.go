package main

import (
	"os"

	"github.com/jkarethiya/sonarfix/cmd"
)

func main() {
	code := cmd.Execute()
	os.Exit(code)
}
