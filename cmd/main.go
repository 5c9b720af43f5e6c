// Command prixsix scores an F1 prediction league season and audits its
// consistency.
//
// Usage:
//
//	prixsix score --race "Bahrain Grand Prix"
//	prixsix rescore --out season.yaml
//	prixsix check --json
//	prixsix standings --limit 10
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
)

func main() {
	// .env is optional
	_ = godotenv.Load(".env")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// run executes the CLI and returns the process exit code.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	root := newRootCmd(stdout, stderr)
	root.SetArgs(args)

	err := root.ExecuteContext(ctx)
	switch {
	case err == nil:
		return 0
	case errors.Is(err, errCheckFailed):
		return exitCheckFailed
	default:
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
}
