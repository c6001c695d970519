package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"enhance-with-ai/src/config"
	"enhance-with-ai/src/invoker"
	"enhance-with-ai/src/logutil"
	"enhance-with-ai/src/runtimeinit"
	"enhance-with-ai/src/session"
	"enhance-with-ai/src/ui"
	"enhance-with-ai/src/worker"
)

type mainOptions struct {
	instruction  string
	text         string
	useClipboard bool
	copyResult   bool
	jsonOutput   bool
	verbose      bool
	interpreter  string
	script       string
	clipboard    string
	timeout      time.Duration
}

// legacyFlags are accepted with a single dash for scripts written against
// Go's flag package.
var legacyFlags = []string{
	"instruction", "text", "clipboard", "copy", "json", "verbose",
	"interpreter", "script", "timeout", "clipboard-backend",
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, errorLine(err))
		os.Exit(1)
	}
}

// errorLine formats err for the terminal. Helper stderr usually ends in a
// newline of its own.
func errorLine(err error) string {
	return "Error: " + strings.TrimRight(err.Error(), " \t\r\n")
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return runWithArgs(ctx, normalizeLegacyArgs(os.Args), os.Stdin, os.Stdout)
}

func runWithArgs(ctx context.Context, args []string, stdin io.Reader, stdout io.Writer) error {
	if len(args) == 0 {
		args = []string{"enhance-with-ai"}
	}

	opts := &mainOptions{}
	cmd := newRootCmd(opts, stdin, stdout)
	cmd.SetArgs(args[1:])
	return cmd.ExecuteContext(ctx)
}

func newRootCmd(opts *mainOptions, stdin io.Reader, stdout io.Writer) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "enhance-with-ai",
		Short: "Send an instruction and clipboard text to a text-processing command",
		Long: `Send an instruction plus text to the helper command as one JSON payload
({"instruction": ..., "text": ...} on stdin) and print its answer.

By default the helper is "python3 main.py" next to this executable; set
HELPER_INTERPRETER / HELPER_SCRIPT (or the matching flags) to use another one.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runOnce(cmd.Context(), *opts, stdin, stdout)
		},
	}

	cmd.Flags().StringVarP(&opts.instruction, "instruction", "i", "", "Instruction for the helper")
	cmd.Flags().StringVarP(&opts.text, "text", "t", "", "Text to process (use '-' for stdin)")
	cmd.Flags().BoolVar(&opts.useClipboard, "clipboard", false, "Read the text from the clipboard when --text is empty")
	cmd.Flags().BoolVar(&opts.copyResult, "copy", false, "Copy the result to the clipboard")
	cmd.Flags().BoolVar(&opts.jsonOutput, "json", false, "Output results as JSON")

	cmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "Verbose output to stderr")
	cmd.PersistentFlags().StringVar(&opts.interpreter, "interpreter", "", "Interpreter for the helper script ('none' runs it directly)")
	cmd.PersistentFlags().StringVar(&opts.script, "script", "", "Helper script, relative to the install directory")
	cmd.PersistentFlags().StringVar(&opts.clipboard, "clipboard-backend", "", "Clipboard backend: auto, native, command or memory")
	cmd.PersistentFlags().DurationVar(&opts.timeout, "timeout", 0, "Kill the helper after this long (0 waits forever)")

	cmd.AddCommand(newDialogCmd(opts))

	return cmd
}

func newDialogCmd(opts *mainOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "dialog",
		Short: "Open the interactive dialog prefilled with the clipboard",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDialog(cmd.Context(), *opts)
		},
	}
}

func bootstrap(opts mainOptions, needClipboard bool, interactive bool) (*runtimeinit.Runtime, error) {
	return runtimeinit.Bootstrap(runtimeinit.Options{
		LoadOptions: config.LoadOptions{
			InterpreterOverride: opts.interpreter,
			ScriptOverride:      opts.script,
			TimeoutOverride:     opts.timeout,
			ClipboardOverride:   opts.clipboard,
		},
		SetupLogging: func(enableFileLogging bool) {
			switch {
			case opts.verbose && !interactive:
				logutil.SetupVerbose(os.Stderr)
			default:
				// stderr would tear the dialog's screen; verbose goes to the file.
				logutil.Setup(enableFileLogging || opts.verbose)
			}
		},
		NeedClipboard: needClipboard,
	})
}

func runOnce(ctx context.Context, opts mainOptions, stdin io.Reader, stdout io.Writer) error {
	rt, err := bootstrap(opts, opts.useClipboard || opts.copyResult, false)
	if err != nil {
		return err
	}

	text, err := resolveText(opts, stdin, rt)
	if err != nil {
		return err
	}

	req := invoker.Request{Instruction: opts.instruction, Text: text}
	if err := req.Validate(); err != nil {
		return err
	}

	var target session.MultiTarget
	if !opts.jsonOutput {
		target = append(target, session.StdoutTarget{Writer: stdout})
	}
	if opts.copyResult {
		target = append(target, session.ClipboardTarget{Clipboard: rt.Clipboard})
	}

	start := time.Now()
	resp, err := session.Execute(ctx, rt.Invoker.Invoke, req, target)
	elapsed := time.Since(start)
	log.Printf("Invocation finished in %v, ok=%v", elapsed, resp.OK())

	if opts.jsonOutput {
		if jsonErr := outputJSON(stdout, resp, elapsed); jsonErr != nil {
			return jsonErr
		}
	}
	return err
}

func resolveText(opts mainOptions, stdin io.Reader, rt *runtimeinit.Runtime) (string, error) {
	switch {
	case opts.text == "-":
		data, err := io.ReadAll(stdin)
		if err != nil {
			return "", fmt.Errorf("failed to read from stdin: %w", err)
		}
		return string(data), nil
	case opts.text != "":
		return opts.text, nil
	case opts.useClipboard:
		text, err := rt.Clipboard.Read()
		if err != nil {
			return "", fmt.Errorf("failed to read clipboard: %w", err)
		}
		log.Printf("Read %d characters from clipboard", len(text))
		return text, nil
	default:
		return "", nil
	}
}

type InvocationResult struct {
	Output   string  `json:"output"`
	Error    string  `json:"error,omitempty"`
	Kind     string  `json:"kind,omitempty"`
	Duration float64 `json:"duration_seconds"`
}

func outputJSON(w io.Writer, resp invoker.Response, elapsed time.Duration) error {
	result := InvocationResult{
		Output:   resp.Output,
		Error:    resp.Message,
		Kind:     invoker.Kind(resp.Err),
		Duration: elapsed.Seconds(),
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(result); err != nil {
		return fmt.Errorf("failed to encode JSON output: %w", err)
	}
	return nil
}

func runDialog(ctx context.Context, opts mainOptions) error {
	rt, err := bootstrap(opts, true, true)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	pool := worker.New(rt.Config.Workers, rt.Invoker.Invoke)
	// Cancel first so Close does not wait on a helper nobody will read.
	defer pool.Close()
	defer cancel()

	outcome, err := ui.Run(ctx, session.NewController(rt.Clipboard, pool))
	if err != nil {
		return err
	}
	switch {
	case outcome.Copied:
		log.Printf("Dialog closed, copied %d characters", len(outcome.Text))
	case outcome.Canceled:
		log.Printf("Dialog canceled")
	}
	return nil
}

func normalizeLegacyArgs(args []string) []string {
	if len(args) == 0 {
		return args
	}

	normalized := make([]string, len(args))
	copy(normalized, args)

	for i := 1; i < len(normalized); i++ {
		arg := normalized[i]
		if arg == "--" {
			break
		}
		for _, name := range legacyFlags {
			switch {
			case arg == "-"+name:
				normalized[i] = "--" + name
			case strings.HasPrefix(arg, "-"+name+"="):
				normalized[i] = "-" + arg
			}
		}
	}

	return normalized
}
