package main

import (
	"os"

	"whisper-batch/cmd/whisper-batch/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
