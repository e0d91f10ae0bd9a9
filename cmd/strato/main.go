package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

const banner = `
  ╔═╗┌┬┐┬─┐┌─┐┌┬┐┌─┐
  ╚═╗ │ ├┬┘├─┤ │ │ │
  ╚═╝ ┴ ┴└─┴ ┴ ┴ └─┘
`

func main() {
	rootCmd := &cobra.Command{
		Use:   "strato",
		Short: "Server-side rendering framework for Go",
		Long: `Strato is a server-side rendering web framework for Go.

It bootstraps an application from strato.json, loads modules, and runs
an HTTP server around a pluggable renderer. Features include:

  • Hook-based lifecycle extension protocol
  • Typed modules enabled by name
  • Aliased path resolution (@, ~, @@, ~~)
  • Hot reload development server
  • Prometheus metrics and OpenTelemetry tracing modules`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(
		serveCmd(),
		initCmd(),
		versionCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "\033[31mError:\033[0m %s\n", err)
		os.Exit(1)
	}
}

// printBanner prints the Strato ASCII art banner.
func printBanner() {
	fmt.Print(banner)
}

// success prints a success message.
func success(format string, args ...any) {
	fmt.Printf("\033[32m✓\033[0m %s\n", fmt.Sprintf(format, args...))
}

// info prints an info message.
func info(format string, args ...any) {
	fmt.Printf("  %s\n", fmt.Sprintf(format, args...))
}

// errorMsg prints an error message.
func errorMsg(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "\033[31m✗\033[0m %s\n", fmt.Sprintf(format, args...))
}
