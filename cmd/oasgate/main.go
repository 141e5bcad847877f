package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/erraggy/oasgate"
	"github.com/erraggy/oasgate/cmd/oasgate/commands"
)

var commandNames = []string{"check", "serve", "mcp", "version", "help"}

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]
	var err error

	switch command {
	case "version", "-v", "--version":
		fmt.Println(oasgate.BuildInfo())
		return
	case "help", "-h", "--help":
		printUsage()
		return
	case "check":
		err = commands.HandleCheck(os.Args[2:])
	case "serve":
		err = commands.HandleServe(os.Args[2:])
	case "mcp":
		err = commands.HandleMCP(os.Args[2:])
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		if suggestion := suggestCommand(command); suggestion != "" {
			fmt.Fprintf(os.Stderr, "Did you mean '%s'?\n", suggestion)
		}
		fmt.Fprintln(os.Stderr)
		printUsage()
		os.Exit(1)
	}

	if err != nil {
		if !errors.Is(err, commands.ErrValidationFailed) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}
}

// suggestCommand returns the known command closest to input, or "" when
// none is within an edit distance of 2.
func suggestCommand(input string) string {
	best, bestDist := "", 3
	for _, name := range commandNames {
		if d := editDistance(input, name); d < bestDist {
			best, bestDist = name, d
		}
	}
	return best
}

// editDistance is the Levenshtein distance between a and b.
func editDistance(a, b string) int {
	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(a); i++ {
		curr[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			curr[j] = min(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}
	return prev[len(b)]
}

func printUsage() {
	fmt.Println(`oasgate - OpenAPI request validation

Usage:
  oasgate <command> [options]

Commands:
  check       Validate one HTTP request against an OpenAPI document
  serve       Run a validating reverse proxy in front of an API
  mcp         Serve the validator to MCP clients over stdio
  version     Show version information
  help        Show this help message

Examples:
  oasgate check -url '/pets?limit=10' openapi.yaml
  oasgate check -X POST -url /pets -body '{"name":"Rex"}' --format json openapi.yaml
  oasgate serve -listen :8080 -upstream http://localhost:9000 openapi.yaml
  oasgate mcp

Run 'oasgate <command> --help' for more information on a command.`)
}
