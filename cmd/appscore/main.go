package main

import (
	"errors"
	"fmt"
	"os"

	"appscore-lab/internal/domain/services"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(exitCode(err))
	}
}

// exitCode is 2 for rejected input and 1 for any other failure
func exitCode(err error) int {
	var invalid *services.InvalidInputError
	if errors.As(err, &invalid) {
		return 2
	}
	return 1
}
