package main

import (
	"errors"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nguyentantai21042004/vidscribe/internal/config"
	"github.com/nguyentantai21042004/vidscribe/internal/export"
	"github.com/nguyentantai21042004/vidscribe/internal/logger"
	"github.com/nguyentantai21042004/vidscribe/internal/processor"
	"github.com/nguyentantai21042004/vidscribe/internal/transcriber"
	"github.com/nguyentantai21042004/vidscribe/pkg/executor"
)

type options struct {
	configPath    string
	backend       string
	logLevel      string
	docxDir       string
	maxConcurrent int
	ordered       bool
	failFast      bool
	insecureTLS   bool
	summary       bool
	watchDir      string
}

func newRootCommand(stdout, stderr io.Writer) *cobra.Command {
	opts := &options{}

	rootCmd := &cobra.Command{
		Use:   "vidscribe [flags] <user-id> <comma-separated-video-paths>",
		Short: "Extract audio from videos and print one transcript line per video",
		Long: "vidscribe extracts the audio track of every video with ffmpeg, transcribes the\n" +
			"audio concurrently and prints one transcript per video on stdout. The input\n" +
			"videos and the derived .mp3 files are deleted once the run completes.\n\n" +
			"With --watch <dir> the only argument is the user id, and every video created\n" +
			"in dir is processed until the command is interrupted.",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args: func(cmd *cobra.Command, args []string) error {
			if opts.watchDir != "" {
				return exactArgs(1)(cmd, args)
			}
			return exactArgs(2)(cmd, args)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			userID := strings.TrimSpace(args[0])
			if userID == "" {
				return &usageError{usage: cmd.UseLine(), err: errors.New("user id must not be empty")}
			}
			if opts.watchDir != "" {
				return runWatch(cmd, opts, userID, stdout, stderr)
			}

			videos := processor.SplitVideoPaths(args[1])
			if len(videos) == 0 {
				return &usageError{usage: cmd.UseLine(), err: errors.New("no video paths given")}
			}

			cfg, err := loadConfig(cmd, opts)
			if err != nil {
				return err
			}
			log := logger.NewWithWriter(cfg.Logging.Level, stderr)

			proc, tr, err := newPipeline(cfg, log, stdout)
			if err != nil {
				return err
			}
			defer tr.Close()

			report, err := proc.Run(cmd.Context(), userID, videos)
			if opts.summary && report != nil {
				renderSummary(stderr, report)
			}
			return err
		},
	}
	// no subcommands: any user id, "help" included, reaches RunE
	rootCmd.CompletionOptions.DisableDefaultCmd = true
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)
	rootCmd.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return &usageError{usage: cmd.UseLine(), err: err}
	})

	flags := rootCmd.Flags()
	flags.StringVarP(&opts.configPath, "config", "c", "", "Configuration file path (default ./"+config.DefaultFile+" when present)")
	flags.StringVar(&opts.backend, "backend", "", "Transcription backend: whisper, whispercpp, openai, gemini")
	flags.StringVar(&opts.logLevel, "log-level", "", "Log level: debug, info, warn, error")
	flags.StringVar(&opts.docxDir, "docx-dir", "", "Also write each transcript as .docx into this directory")
	flags.IntVar(&opts.maxConcurrent, "max-concurrent", 0, "Bound each phase to N concurrent tasks (0 = unbounded)")
	flags.BoolVar(&opts.ordered, "ordered", false, "Print transcripts in input order after all have finished")
	flags.BoolVar(&opts.failFast, "fail-fast", false, "Abort the run on the first audio extraction failure")
	flags.BoolVar(&opts.insecureTLS, "insecure-tls", false, "Skip TLS certificate verification for model downloads and API calls")
	flags.BoolVar(&opts.summary, "summary", false, "Print a per-video summary table on stderr")
	flags.StringVar(&opts.watchDir, "watch", "", "Watch this directory and process every new video until interrupted")

	return rootCmd
}

func exactArgs(n int) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := cobra.ExactArgs(n)(cmd, args); err != nil {
			return &usageError{usage: cmd.UseLine(), err: err}
		}
		return nil
	}
}

// loadConfig resolves the config file and environment, then applies flags that were set
func loadConfig(cmd *cobra.Command, opts *options) (*config.Config, error) {
	cfg, err := config.Resolve(opts.configPath)
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("backend") {
		cfg.Whisper.Backend = opts.backend
	}
	if flags.Changed("log-level") {
		cfg.Logging.Level = opts.logLevel
	}
	if flags.Changed("docx-dir") {
		cfg.Paths.DocxDir = opts.docxDir
	}
	if flags.Changed("max-concurrent") {
		cfg.Pipeline.MaxConcurrent = opts.maxConcurrent
	}
	if flags.Changed("ordered") {
		cfg.Pipeline.OrderedOutput = opts.ordered
	}
	if flags.Changed("fail-fast") {
		cfg.Pipeline.ExtractionFailure = config.BestEffort
		if opts.failFast {
			cfg.Pipeline.ExtractionFailure = config.FailFast
		}
	}
	if flags.Changed("insecure-tls") {
		cfg.TLS.InsecureSkipVerify = opts.insecureTLS
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// newPipeline wires the processor; the caller closes the returned transcriber
func newPipeline(cfg *config.Config, log logger.Logger, stdout io.Writer) (processor.Processor, transcriber.Transcriber, error) {
	exec := executor.New()

	tr, err := transcriber.New(cfg, exec, log)
	if err != nil {
		return nil, nil, err
	}

	var exp export.Exporter
	if cfg.Paths.DocxDir != "" {
		exp = export.New(cfg.Paths.DocxDir, log)
	}

	return processor.New(cfg, exec, tr, exp, stdout, log), tr, nil
}
