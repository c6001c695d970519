package runtimeinit

import (
	"fmt"
	"log"

	"enhance-with-ai/src/clipboard"
	"enhance-with-ai/src/config"
	"enhance-with-ai/src/invoker"
)

type Options struct {
	LoadOptions  config.LoadOptions
	SetupLogging func(bool)
	// NeedClipboard opens the configured clipboard backend; failure is fatal.
	NeedClipboard bool
}

type Runtime struct {
	Config    *config.Config
	Invoker   *invoker.Invoker
	Clipboard *clipboard.Clipboard
}

func Bootstrap(opts Options) (*Runtime, error) {
	cfg, err := config.LoadWithOptions(opts.LoadOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	if opts.SetupLogging != nil {
		opts.SetupLogging(cfg.EnableFileLogging)
	}
	if cfg.EnvPath != "" {
		log.Printf("Configuration loaded from %s", cfg.EnvPath)
	}

	cmd, err := invoker.Resolve(cfg.Interpreter, cfg.Script)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve helper command: %w", err)
	}
	log.Printf("Helper command: %s (timeout %v)", cmd, cfg.InvokeTimeout)

	inv := invoker.New(cmd)
	inv.Timeout = cfg.InvokeTimeout
	inv.OnTransition = func(id string, from, to invoker.State) {
		log.Printf("Invoker[%s]: %s -> %s", id, from, to)
	}

	rt := &Runtime{Config: cfg, Invoker: inv}
	if opts.NeedClipboard {
		clip, err := clipboard.Open(cfg.ClipboardBackend)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize clipboard: %w", err)
		}
		log.Printf("Clipboard backend: %s", clip.Backend())
		rt.Clipboard = clip
	}

	return rt, nil
}
