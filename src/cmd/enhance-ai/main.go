package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"enhance-with-ai/src/enhancer"
	"enhance-with-ai/src/llm"
	"enhance-with-ai/src/logutil"
)

type helperOptions struct {
	configPath string
	verbose    bool
}

// Errors go to stderr without decoration: the caller shows stderr verbatim.
func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := runWithArgs(ctx, os.Args, os.Stdin, os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func runWithArgs(ctx context.Context, args []string, stdin io.Reader, stdout io.Writer) error {
	if len(args) == 0 {
		args = []string{"enhance-ai"}
	}

	opts := &helperOptions{}
	cmd := newRootCmd(opts, stdin, stdout)
	cmd.SetArgs(args[1:])
	return cmd.ExecuteContext(ctx)
}

func newRootCmd(opts *helperOptions, stdin io.Reader, stdout io.Writer) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "enhance-ai",
		Short:         "Answer a JSON {instruction, text} payload read from stdin",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWithOptions(cmd.Context(), *opts, stdin, stdout)
		},
	}

	cmd.Flags().StringVar(&opts.configPath, "config", "", "Path to the config file (default ~/.config/enhance-with-ai/config)")
	cmd.Flags().BoolVarP(&opts.verbose, "verbose", "v", false, "Verbose output to stderr")

	return cmd
}

func runWithOptions(ctx context.Context, opts helperOptions, stdin io.Reader, stdout io.Writer) error {
	// Configure logging BEFORE any other operations.
	if opts.verbose {
		logutil.SetupVerbose(os.Stderr)
	} else {
		log.SetOutput(io.Discard)
	}

	path := opts.configPath
	if path == "" {
		var err error
		if path, err = enhancer.DefaultConfigPath(); err != nil {
			return err
		}
	}

	settings, err := enhancer.LoadSettings(path)
	if err != nil {
		return err
	}
	log.Printf("Config loaded from %s: model=%s key=%s", settings.Path, settings.Model, logutil.RedactKey(settings.APIKey))

	client := llm.NewClient(llm.Config{
		APIKey:  settings.APIKey,
		Model:   settings.Model,
		BaseURL: settings.BaseURL,
	})
	return enhancer.Run(ctx, stdin, stdout, client)
}
