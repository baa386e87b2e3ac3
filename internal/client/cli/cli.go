// Package cli implements the interactive commands of the promptomatik
// client binary.
package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/Greg-Swiftomatic/promptomatik/internal/client/iocli"
	"github.com/Greg-Swiftomatic/promptomatik/internal/client/session"
	"github.com/Greg-Swiftomatic/promptomatik/internal/client/storage"
)

type Cli struct {
	io      iocli.IO
	session *session.Manager
	prompts storage.PromptStorage
}

func New(io iocli.IO, sessionManager *session.Manager, prompts storage.PromptStorage) *Cli {
	return &Cli{
		io:      io,
		session: sessionManager,
		prompts: prompts,
	}
}

// Run dispatches a single command. Command errors print to stderr and exit
// non-zero, matching the usual one-shot CLI contract.
func (c *Cli) Run(ctx context.Context, command string, args []string) {
	var err error

	switch command {
	case "register":
		err = c.runRegister(ctx)
	case "login":
		err = c.runLogin(ctx)
	case "logout":
		err = c.runLogout(ctx)
	case "status":
		err = c.runStatus(ctx)
	case "refresh":
		err = c.runRefresh(ctx)
	case "migrate":
		err = c.runMigrate(ctx)
	case "add":
		err = c.runAdd(ctx)
	case "list":
		err = c.runList(ctx)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		PrintUsage()
		os.Exit(1)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func PrintUsage() {
	fmt.Println("Promptomatik Client")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  promptomatik [OPTIONS] COMMAND")
	fmt.Println()
	fmt.Println("Options:")
	fmt.Println("  --version      Show version information")
	fmt.Println("  --server URL   Server URL (default: http://localhost:8080)")
	fmt.Println("  --db PATH      Path to local database (default: promptomatik-client.db)")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  register       Register new account")
	fmt.Println("  login          Login to server")
	fmt.Println("  logout         Logout and clear local session")
	fmt.Println("  status         Show session status")
	fmt.Println("  refresh        Refresh the access token")
	fmt.Println("  migrate        Upload local prompts to the server")
	fmt.Println("  add            Add a local prompt")
	fmt.Println("  list           List local prompts")
	fmt.Println()
	fmt.Println("Examples:")
	fmt.Println("  promptomatik register")
	fmt.Println("  promptomatik add")
	fmt.Println("  promptomatik --server https://example.com login")
}
