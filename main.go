package main

import (
	"os"

	"github.com/scan-io-git/credscan/cmd"
)

func main() {
	code := cmd.Execute()
	os.Exit(code)
}
