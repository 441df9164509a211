package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"milkdesk/internal/api"
	"milkdesk/internal/config"
	"milkdesk/internal/logging"
	"milkdesk/internal/metrics"
	"milkdesk/internal/session"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

type Runner struct {
	options Options
	logger  *zap.Logger
	client  *api.Client
	session session.Session
	metrics *metrics.Recorder
	sink    *logging.FileSink
	now     func() time.Time
}

func NewRunner(cfg config.Config, logger *zap.Logger, client *api.Client, sess session.Session, recorder *metrics.Recorder, sink *logging.FileSink) *Runner {
	return &Runner{
		options: Options{
			APIBaseURL: cfg.APIBaseURL,
			APIToken:   cfg.APIToken,
			Timeout:    cfg.Timeout,
			Debug:      cfg.Debug,
			LogFile:    cfg.LogFile,
		},
		logger:  logger.Named("cli"),
		client:  client,
		session: sess,
		metrics: recorder,
		sink:    sink,
		now:     time.Now,
	}
}

// Execute runs the command line of the current process. SIGINT and SIGTERM cancel
// in-flight API calls.
func (r *Runner) Execute() error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	return r.Run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
}

func (r *Runner) Run(ctx context.Context, args []string, in io.Reader, out, errOut io.Writer) error {
	root := r.rootCommand()
	root.SetArgs(args)
	root.SetIn(in)
	root.SetOut(out)
	root.SetErr(errOut)

	if err := root.ExecuteContext(ctx); err != nil {
		r.logger.Debug("command failed", zap.Strings("args", args), zap.Error(err))
		return &commandError{message: friendlyError(err), err: err}
	}
	return nil
}

func (r *Runner) rootCommand() *cobra.Command {
	var timeoutSeconds int

	root := &cobra.Command{
		Use:           "milkdesk",
		Short:         "Administration console for the dairy cooperative",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			flags := cmd.Flags()
			if flags.Changed("timeout") && timeoutSeconds > 0 {
				r.options.Timeout = time.Duration(timeoutSeconds) * time.Second
			}
			// The sink is already teed into every logger, so flags only retarget it.
			if flags.Changed("log-file") {
				if err := r.sink.SetPath(r.options.LogFile); err != nil {
					return err
				}
			}
			if flags.Changed("debug") {
				r.sink.SetDebug(r.options.Debug)
			}
			r.sink.Resume()
			if flags.Changed("api-url") || flags.Changed("token") || flags.Changed("timeout") || r.client == nil {
				r.client = newClientFromOptions(&r.options, r.logger, r.metrics)
			}
			if flags.Changed("token") {
				r.session = session.New(r.options.APIToken)
			}

			cmd.SetContext(session.WithSession(cmd.Context(), r.session))
			if skipsSessionCheck(cmd) {
				return nil
			}
			return session.Require(cmd.Context(), session.CapRead)
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&r.options.APIBaseURL, "api-url", r.options.APIBaseURL, "Cooperative API base URL (API_BASE_URL)")
	pf.StringVar(&r.options.APIToken, "token", r.options.APIToken, "Bearer token for the API (API_TOKEN)")
	pf.IntVar(&timeoutSeconds, "timeout", int(r.options.Timeout.Seconds()), "Request timeout in seconds")
	pf.BoolVar(&r.options.JSON, "json", false, "Output JSON format")
	pf.BoolVar(&r.options.Debug, "debug", r.options.Debug, "Log debug messages to the log file")
	pf.StringVar(&r.options.LogFile, "log-file", r.options.LogFile, "Log file path")

	root.AddCommand(
		r.sessionCommand(),
		r.suppliersCommand(),
		r.entriesCommand(),
		r.qualityCommand(),
		r.summaryCommand(),
	)
	return root
}

// skipsSessionCheck lets the session command and cobra's built-ins run signed out.
func skipsSessionCheck(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		switch c.Name() {
		case "session", "help", "completion":
			return true
		}
	}
	return false
}

func newClientFromOptions(opts *Options, logger *zap.Logger, recorder *metrics.Recorder) *api.Client {
	cfg := config.Config{
		APIBaseURL: opts.APIBaseURL,
		APIToken:   opts.APIToken,
		Timeout:    opts.Timeout,
	}
	return api.NewClient(cfg, logger, recorder)
}

func (r *Runner) sessionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "session",
		Short: "Show who the console is signed in as",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s := session.FromContext(cmd.Context())
			now := r.now()
			if r.options.JSON {
				return writeJSON(cmd.OutOrStdout(), map[string]any{
					"authenticated": s.Authenticated(),
					"opaque":        s.Opaque,
					"email":         s.Email,
					"subject":       s.Subject,
					"role":          s.Role,
					"can_read":      s.CanAt(session.CapRead, now),
					"can_write":     s.CanAt(session.CapWrite, now),
					"api_url":       r.client.BaseURL(),
				})
			}
			fmt.Fprintln(cmd.OutOrStdout(), s.Describe(now))
			fmt.Fprintf(cmd.OutOrStdout(), "API: %s\n", r.client.BaseURL())
			return nil
		},
	}
}

// requireWrite guards every mutating command.
func requireWrite(cmd *cobra.Command) error {
	return session.Require(cmd.Context(), session.CapWrite)
}
