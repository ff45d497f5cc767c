package main

import (
	"os"

	"github.com/aiborg-ai/aiborg-learn-sphere-sub002/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
