// Command vegetation-mcp serves vegetation health analysis to MCP clients
// over stdin/stdout.
package main

import (
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/ironsheep/vegetation-health-mcp/internal/server"
	"github.com/ironsheep/vegetation-health-mcp/internal/vegetation"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "--version", "-v", "version":
			printVersion(os.Stdout)
			return
		case "--help", "-h", "help":
			printHelp(os.Stdout)
			return
		}
	}

	// stdout carries the protocol
	log.SetOutput(os.Stderr)
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)

	debug := os.Getenv("VEGETATION_MCP_LOG_LEVEL") == "debug"
	if debug {
		log.Printf("vegetation-mcp %s (built %s, commit %s) starting, %d tools",
			Version, BuildTime, GitCommit, len(server.GetToolDefinitions()))
	}

	srv := server.NewWithConfig(server.Config{Debug: debug})
	if err := srv.Run(); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}

func printVersion(w io.Writer) {
	fmt.Fprintf(w, "vegetation-mcp %s\n", Version)
	fmt.Fprintf(w, "  Build time: %s\n", BuildTime)
	fmt.Fprintf(w, "  Git commit: %s\n", GitCommit)
	fmt.Fprintf(w, "  Profiles:   %s\n", strings.Join(vegetation.ProfileKeys(), ", "))
}

func printHelp(w io.Writer) {
	fmt.Fprintln(w, "vegetation-mcp - vegetation health analysis for aerial captures, served over MCP")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Usage: vegetation-mcp [--version | --help]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Tools:")
	for _, tool := range server.GetToolDefinitions() {
		fmt.Fprintf(w, "  %-26s %s\n", tool.Name, firstSentence(tool.Description))
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Profiles: "+strings.Join(vegetation.ProfileKeys(), ", "))
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Environment variables:")
	fmt.Fprintln(w, "  VEGETATION_MCP_LOG_LEVEL=debug    Log tool timings to stderr")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "For batch runs outside an MCP client, use vegbatch.")
}

func firstSentence(s string) string {
	if i := strings.Index(s, ". "); i >= 0 {
		return s[:i+1]
	}
	return s
}
