package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/chzyer/readline"
	"github.com/pkg/errors"
	"github.com/robertkrimen/isatty"
	"github.com/spf13/cobra"
	factlog "github.com/vilterp/factlog/pkg"
	"github.com/vilterp/factlog/pkg/config"
	clog "github.com/vilterp/factlog/pkg/log"
)

// errReported means the failure was already shown to the user.
var errReported = errors.New("error already reported")

func main() {
	if err := newRootCmd().Execute(); err != nil {
		if err != errReported {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configFile string
	cmd := &cobra.Command{
		Use:          "factlog-shell",
		Short:        "Interactive shell for asserting and querying facts",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(config.New(), configFile, cmd.Flags())
			if err != nil {
				return err
			}
			if err := clog.Init(cfg.LogLevel); err != nil {
				return err
			}
			defer clog.Sync()
			return run(cfg, cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}
	flags := cmd.Flags()
	flags.StringVar(&configFile, "config", "", "TOML config file")
	flags.String("data-file", "", "bolt file to keep facts in across runs (default: memory only)")
	flags.Bool("strict-lexing", false, "reject unrecognized characters instead of dropping them")
	flags.Bool("strict-arity", false, "reject facts whose arity differs from earlier facts of the same name")
	flags.String("history-file", "/tmp/.factlog-history", "readline history file")
	flags.String("url", "", "URL of a factlog server to send lines to, e.g. ws://localhost:9000/ws")
	flags.String("log-level", "warn", "log level")
	return cmd
}

func run(cfg *config.Config, in io.Reader, out io.Writer) error {
	b, err := newBackend(cfg, out)
	if err != nil {
		return err
	}
	defer b.close()

	// check if is TTY
	isInputTty := in == os.Stdin && isatty.Check(os.Stdin.Fd())

	if isInputTty {
		fmt.Fprintln(out, "factlog shell")
		fmt.Fprintln(out, "\\h for help")
	}

	prompt, continuation := "", ""
	if isInputTty {
		prompt, continuation = "?- ", "|  "
	}
	l, err := readline.NewEx(&readline.Config{
		Prompt:            prompt,
		HistoryFile:       cfg.HistoryFile,
		InterruptPrompt:   "^C",
		EOFPrompt:         "bye!",
		HistorySearchFold: true,
		AutoComplete:      newCompleter(b),
		Stdin:             io.NopCloser(in),
		Stdout:            out,
		FuncIsTerminal:    func() bool { return isInputTty },
	})
	if err != nil {
		return err
	}
	defer l.Close()

	pending := false
	for {
		if pending {
			l.SetPrompt(continuation)
		} else {
			l.SetPrompt(prompt)
		}

		line, readlineErr := l.Readline()
		if readlineErr == readline.ErrInterrupt {
			if pending {
				b.reset()
				pending = false
				continue
			}
			fmt.Fprintln(out, "bye!")
			return nil
		}
		if readlineErr == io.EOF {
			// flush prints its own errors
			if b.flush() != nil {
				return errReported
			}
			return nil
		}
		if readlineErr != nil {
			return readlineErr
		}

		trimmed := strings.TrimSpace(line)
		if trimmed == "exit" && !pending {
			fmt.Fprintln(out, "bye!")
			return nil
		}
		if strings.HasPrefix(trimmed, `\`) && !pending {
			fmt.Fprintln(out, b.command(trimmed))
			continue
		}

		pending = b.exec(line)
	}
}

// backend is either a local session or a connection to a server.
type backend interface {
	// exec prints the outcome of line and reports whether a statement is
	// still open.
	exec(line string) bool
	command(line string) string
	predicates() []string
	reset()
	flush() error
	close()
}

func newBackend(cfg *config.Config, out io.Writer) (backend, error) {
	if cfg.URL != "" {
		client, err := factlog.NewClient(cfg.URL)
		if err != nil {
			return nil, err
		}
		return &remoteBackend{client: client, out: out}, nil
	}
	session, err := factlog.NewSession(context.Background(), factlog.OptionsFromConfig(cfg), nil)
	if err != nil {
		return nil, err
	}
	return &localBackend{session: session, out: out}, nil
}

type localBackend struct {
	session *factlog.Session
	out     io.Writer
}

func (lb *localBackend) exec(line string) bool {
	results, err := lb.session.Exec(line)
	printResults(lb.out, results, err)
	return lb.session.Pending()
}

func (lb *localBackend) command(line string) string {
	out, ok := lb.session.Command(line)
	if !ok {
		return "unknown command: " + line
	}
	return out
}

func (lb *localBackend) predicates() []string {
	return lb.session.Store().Predicates()
}

func (lb *localBackend) reset() {
	lb.session.Reset()
}

func (lb *localBackend) flush() error {
	results, err := lb.session.Flush()
	printResults(lb.out, results, err)
	return err
}

func (lb *localBackend) close() {
	if err := lb.session.Close(); err != nil {
		fmt.Fprintln(lb.out, "error closing session:", err)
	}
}

func printResults(out io.Writer, results []*factlog.Result, err error) {
	for _, result := range results {
		fmt.Fprintln(out, result)
	}
	if err != nil {
		fmt.Fprintln(out, "error:", err)
	}
}

type remoteBackend struct {
	client *factlog.Client
	out    io.Writer
	// predicates seen in this shell, for completion
	seen map[string]bool
}

func (rb *remoteBackend) exec(line string) bool {
	resp, err := rb.client.Exec(line)
	if err != nil {
		fmt.Fprintln(rb.out, "error:", err)
		return false
	}
	rb.print(resp)
	return resp.Pending
}

func (rb *remoteBackend) print(resp *factlog.Response) {
	for _, result := range resp.Results {
		fmt.Fprintln(rb.out, result.Message)
		if result.Kind == factlog.Asserted.String() {
			rb.remember(result.Statement)
		}
	}
	if resp.Error != nil {
		fmt.Fprintln(rb.out, "error:", *resp.Error)
	}
}

func (rb *remoteBackend) remember(statement string) {
	if rb.seen == nil {
		rb.seen = map[string]bool{}
	}
	name := statement
	if idx := strings.IndexByte(statement, '('); idx >= 0 {
		name = statement[:idx]
	}
	rb.seen[name] = true
}

func (rb *remoteBackend) command(line string) string {
	resp, err := rb.client.Exec(line)
	if err != nil {
		return "error: " + err.Error()
	}
	if resp.Error != nil {
		return *resp.Error
	}
	if resp.Text != nil {
		return *resp.Text
	}
	return ""
}

func (rb *remoteBackend) predicates() []string {
	var names []string
	for name := range rb.seen {
		names = append(names, name)
	}
	return names
}

func (rb *remoteBackend) reset() {
	if err := rb.client.Reset(); err != nil {
		fmt.Fprintln(rb.out, "error:", err)
	}
}

func (rb *remoteBackend) flush() error {
	resp, err := rb.client.Flush()
	if err != nil {
		fmt.Fprintln(rb.out, "error:", err)
		return err
	}
	rb.print(resp)
	if resp.Error != nil {
		return errors.New(*resp.Error)
	}
	return nil
}

func (rb *remoteBackend) close() {
	rb.client.Close()
}

func newCompleter(b backend) *readline.PrefixCompleter {
	names := func(string) []string {
		return b.predicates()
	}
	queryNames := func(string) []string {
		var out []string
		for _, name := range b.predicates() {
			out = append(out, "?"+name)
		}
		return out
	}
	return readline.NewPrefixCompleter(
		readline.PcItem(`\h`),
		readline.PcItem(`\f`),
		readline.PcItem(`\r`),
		readline.PcItem("exit"),
		readline.PcItemDynamic(names),
		readline.PcItemDynamic(queryNames),
	)
}
