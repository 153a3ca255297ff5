package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/hubsync/hubsync/internal/cli"
	"github.com/hubsync/hubsync/internal/prompt"
	"github.com/hubsync/hubsync/internal/resolve"
)

func main() {
	if err := cli.Run(context.Background(), os.Args); err != nil {
		if errors.Is(err, resolve.ErrAborted) || errors.Is(err, prompt.ErrCancelled) {
			fmt.Fprintln(os.Stderr, "Aborted.")
			os.Exit(130)
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
