// Package cli wires the doctrans command-line interface.
package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"doc-translator/internal/config"
	"doc-translator/internal/fileproc"
	"doc-translator/internal/logger"
	"doc-translator/internal/orchestrator"
	"doc-translator/internal/types"
)

// Flags holds all command-line flag values.
type Flags struct {
	CfgFile        string
	APIUrl         string
	Model          string
	TargetLanguage string
	OutputFile     string
	MaxChunkTokens int
	Verbose        bool
}

// NewFlags creates a Flags instance with default values.
func NewFlags() *Flags {
	return &Flags{
		TargetLanguage: "Japanese",
	}
}

// NewRootCommand builds the doctrans command tree.
func NewRootCommand(flags *Flags) *cobra.Command {
	root := &cobra.Command{
		Use:   "doctrans",
		Short: "Translate long-form documents through an OpenAI-compatible API",
		Long: "doctrans translates plain text, markdown, PDF, and EPUB documents " +
			"through an OpenAI-compatible chat-completion API while preserving " +
			"code blocks, tables, and technical content byte-for-byte.",
		SilenceUsage: true,
		PersistentPreRun: func(*cobra.Command, []string) {
			if flags.Verbose {
				logger.SetLevel(logger.LevelDebug)
			}
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&flags.CfgFile, "config", "", "config file (default: ./doctrans.yaml)")
	pf.StringVar(&flags.APIUrl, "api-url", "", "API base URL override")
	pf.StringVar(&flags.Model, "model", "", "model name override")
	pf.BoolVarP(&flags.Verbose, "verbose", "v", false, "enable debug logging")

	root.AddCommand(newTranslateCommand(flags))
	root.AddCommand(newCheckCommand(flags))
	root.AddCommand(newModelsCommand(flags))
	return root
}

func newTranslateCommand(flags *Flags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "translate <file>",
		Short: "Translate one document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTranslate(cmd.Context(), flags, args[0])
		},
	}
	cmd.Flags().StringVarP(&flags.TargetLanguage, "target", "t", flags.TargetLanguage, "target language")
	cmd.Flags().StringVarP(&flags.OutputFile, "output", "o", "", "output file (default: stdout)")
	cmd.Flags().IntVar(&flags.MaxChunkTokens, "max-chunk-tokens", 0, "per-chunk token budget override")
	return cmd
}

func runTranslate(ctx context.Context, flags *Flags, path string) error {
	cfg, err := config.Load(flags.CfgFile)
	if err != nil {
		return err
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return types.NewAppError(types.ErrFileRead, "failed to read document", err)
	}
	fileType := strings.TrimPrefix(filepath.Ext(path), ".")
	if fileType == "" {
		fileType = "txt"
	}

	orch := orchestrator.New(cfg)

	// Ctrl-C aborts the in-flight translation cooperatively.
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	opts := &types.TranslationOptions{
		APIUrl:         flags.APIUrl,
		ModelName:      flags.Model,
		MaxChunkTokens: flags.MaxChunkTokens,
		OnProgress: func(pct int, msg string) {
			fmt.Fprintf(os.Stderr, "\r[%3d%%] %s", pct, msg)
		},
	}

	result, err := orch.TranslateFile(ctx, content, fileType, flags.TargetLanguage, opts)
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return err
	}

	if flags.OutputFile == "" {
		fmt.Println(result)
		return nil
	}
	if err := os.WriteFile(flags.OutputFile, []byte(result), 0o644); err != nil {
		return types.NewAppError(types.ErrFileRead, "failed to write output file", err)
	}
	fmt.Fprintf(os.Stderr, "wrote %s\n", flags.OutputFile)
	return nil
}

func newCheckCommand(flags *Flags) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Probe connectivity to the translation backend",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(flags.CfgFile)
			if err != nil {
				return err
			}
			orch := orchestrator.New(cfg)
			if !orch.TestConnection(cmd.Context(), flags.APIUrl, flags.Model) {
				return types.NewAppError(types.ErrAPIConnection, "backend is not reachable", nil)
			}
			fmt.Println("ok")
			return nil
		},
	}
}

func newModelsCommand(flags *Flags) *cobra.Command {
	return &cobra.Command{
		Use:   "models",
		Short: "List models offered by the translation backend",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(flags.CfgFile)
			if err != nil {
				return err
			}
			orch := orchestrator.New(cfg)
			models := orch.FetchAvailableModels(cmd.Context(), flags.APIUrl)
			if len(models) == 0 {
				fmt.Println("no models reported (backend unreachable or listing unsupported)")
				return nil
			}
			for _, m := range models {
				fmt.Println(m)
			}
			return nil
		},
	}
}

// SupportedTypes returns the document types the translate command accepts.
func SupportedTypes() []string {
	return fileproc.Supported()
}
