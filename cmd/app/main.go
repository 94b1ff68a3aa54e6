// Command app starts the desktop queue window.
package main

import (
	"fmt"
	"os"

	"whisper-batch/internal/bootstrap"
)

func main() {
	app, err := bootstrap.New()
	if err != nil {
		fmt.Fprintf(os.Stderr, "whisper-batch desktop: %v\n", err)
		os.Exit(1)
	}

	if err := app.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "whisper-batch desktop: %v\n", err)
		os.Exit(1)
	}
}
