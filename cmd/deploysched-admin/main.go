// Command deploysched-admin manages scheduled deployment jobs through the API and runs schema migrations.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"sort"
	"time"

	"github.com/deploysched/deploysched/config"
	"github.com/deploysched/deploysched/internal/bootstrap"
	"github.com/deploysched/deploysched/internal/client"
	"github.com/deploysched/deploysched/internal/domain/model"
)

type commandFn func(ctx *commandContext, args []string) error

type command struct {
	name        string
	usage       string
	description string
	run         commandFn
}

// apiClient is the slice of the HTTP client the job commands use.
type apiClient interface {
	client.SchedulingServiceClient
	Get(ctx context.Context, id string) (*model.Job, error)
	Executions(ctx context.Context, id string) ([]model.JobExecution, error)
	VersionModes(ctx context.Context) ([]model.VersionModeInfo, error)
	FormDefaults(ctx context.Context) (*model.FormDefaultsView, error)
}

type commandContext struct {
	Ctx    context.Context
	Logger *slog.Logger
	Config config.AppConfig
	Out    io.Writer
	Err    io.Writer
	In     io.Reader
	Now    func() time.Time
	// NewClient builds the API client; overridden in tests.
	NewClient func(cfg config.ClientConfig) (apiClient, error)
}

func newHTTPAPIClient(cfg config.ClientConfig) (apiClient, error) {
	return client.NewHTTPClient(client.HTTPClientOptions{
		BaseURL:    cfg.BaseURL,
		Token:      cfg.Token,
		HTTPClient: &http.Client{Timeout: cfg.Timeout},
	})
}

func main() {
	logger := bootstrap.NewLogger(os.Stderr, false)
	os.Exit(run(context.Background(), os.Args[1:], &commandContext{ //nolint:forbidigo // CLI exit status
		Logger:    logger,
		Out:       os.Stdout,
		Err:       os.Stderr,
		In:        os.Stdin,
		Now:       time.Now,
		NewClient: newHTTPAPIClient,
	}, bootstrap.LoadConfig))
}

// run executes one command and returns the process exit status.
func run(ctx context.Context, args []string, cmdCtx *commandContext, loadConfig func() (config.AppConfig, error)) int {
	if len(args) < 1 {
		printUsage(cmdCtx.Err)
		return 2
	}

	cmdName := args[0]
	cmd, ok := commands()[cmdName]
	if !ok {
		fmt.Fprintf(cmdCtx.Err, "unknown command %q\n\n", cmdName)
		printUsage(cmdCtx.Err)
		return 2
	}

	cfg, err := loadConfig()
	if err != nil {
		cmdCtx.Logger.ErrorContext(ctx, "load config", "error", err)
		return 1
	}
	cmdCtx.Ctx = ctx
	cmdCtx.Config = cfg

	if runErr := cmd.run(cmdCtx, args[1:]); runErr != nil {
		cmdCtx.Logger.ErrorContext(ctx, "command failed", "command", cmdName, "error", runErr)
		return 1
	}
	return 0
}

func commands() map[string]command {
	return map[string]command{
		"migrate": {
			name:        "migrate",
			usage:       "[-timeout 5m]",
			description: "Run database migrations",
			run:         runMigrations,
		},
		"jobs-list": {
			name:        "jobs-list",
			usage:       "[-status pending] [-app name] [-output table|json|yaml] [-query expr]",
			description: "List scheduled jobs with their display status",
			run:         runJobsList,
		},
		"jobs-show": {
			name:        "jobs-show",
			usage:       "<id> [-output table|json|yaml]",
			description: "Show one job and its execution history",
			run:         runJobsShow,
		},
		"jobs-create": {
			name:        "jobs-create",
			usage:       "[-f request.yaml] [-app ...] [-date YYYY-MM-DD -time HH:MM] ...",
			description: "Validate and schedule a new deployment job",
			run:         runJobsCreate,
		},
		"jobs-edit": {
			name:        "jobs-edit",
			usage:       "<id> -jenkins-token ... [field flags]",
			description: "Replace the request of a pending job",
			run:         runJobsEdit,
		},
		"jobs-delete": {
			name:        "jobs-delete",
			usage:       "<id> [-yes]",
			description: "Permanently delete a job",
			run:         runJobsDelete,
		},
		"version-modes": {
			name:        "version-modes",
			usage:       "[-output table|json|yaml]",
			description: "Describe the version modes and whether they need a version",
			run:         runVersionModes,
		},
	}
}

func printUsage(w io.Writer) {
	fmt.Fprintf(w, "Usage: deploysched-admin <command> [flags]\n\n")
	fmt.Fprintf(w, "Available commands:\n")

	cmds := commands()
	names := make([]string, 0, len(cmds))
	for name := range cmds {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		c := cmds[name]
		fmt.Fprintf(w, "  %-15s %s\n  %-15s   %s %s\n", c.name, c.description, "", c.name, c.usage)
	}
}
