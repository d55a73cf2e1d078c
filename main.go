package main

import (
	"context"
	"fmt"
	"os"

	"github.com/GrainArc/TrialMap/cmd"
)

func main() {
	if err := cmd.RootCommand().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
