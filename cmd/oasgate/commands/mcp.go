package commands

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/erraggy/oasgate/internal/cliutil"
	"github.com/erraggy/oasgate/internal/mcpserver"
)

// HandleMCP executes the mcp command: an MCP server on stdin/stdout that
// runs until the client disconnects or the process is interrupted.
func HandleMCP(args []string) error {
	fs := flag.NewFlagSet("mcp", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		cliutil.Writef(fs.Output(), "Usage: oasgate mcp\n\n")
		cliutil.Writef(fs.Output(), "Serve the validate_request and list_operations tools to an MCP client over stdio.\n")
		cliutil.Writef(fs.Output(), "Defaults are read from OASGATE_* environment variables.\n")
	}
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return err
	}
	if fs.NArg() != 0 {
		fs.Usage()
		return fmt.Errorf("mcp command takes no arguments")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return mcpserver.Run(ctx)
}
