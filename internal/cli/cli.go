package cli

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"golang.org/x/text/language"

	"github.com/snowyegret23/godot-translation-file-tool/internal/config"
	"github.com/snowyegret23/godot-translation-file-tool/internal/csvio"
	"github.com/snowyegret23/godot-translation-file-tool/internal/pck"
	"github.com/snowyegret23/godot-translation-file-tool/internal/textutil"
	"github.com/snowyegret23/godot-translation-file-tool/internal/translation"
	"github.com/snowyegret23/godot-translation-file-tool/internal/worker"
)

// Execute runs the CLI application.
func Execute() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	rootCmd := &cobra.Command{
		Use:   "godot-translation-file-tool",
		Short: "Convert Godot .translation resources to and from editable CSV",
		Long: `Converts Godot optimized translation resources between their binary form
and a CSV form translators can edit, and rebuilds loader-compatible binaries
from edited CSVs. Files can be pulled from and pushed back into .pck archives
via godotpcktool.`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
				zerolog.SetGlobalLevel(zerolog.DebugLevel)
			}
		},
	}
	rootCmd.PersistentFlags().Bool("verbose", false, "enable debug logging")

	rootCmd.AddCommand(exportCmd())
	rootCmd.AddCommand(importCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func exportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export <file.translation>...",
		Short: "Convert translation resources to editable CSV",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pckPath, _ := cmd.Flags().GetString("pck")
			outDir, _ := cmd.Flags().GetString("output")
			return runExport(args, pckPath, outDir)
		},
	}

	cmd.Flags().String("pck", "", "extract the named files from this .pck archive first")
	cmd.Flags().String("output", "", "directory for the CSV files (default: next to each input)")

	return cmd
}

func importCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import <file.csv>",
		Short: "Apply an edited CSV to the original resource and rebuild the binary",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pckPath, _ := cmd.Flags().GetString("pck")
			srcPath, _ := cmd.Flags().GetString("source")
			locale, _ := cmd.Flags().GetString("locale")
			outPath, _ := cmd.Flags().GetString("output")
			return runImport(args[0], srcPath, pckPath, locale, outPath)
		},
	}

	cmd.Flags().String("pck", "", "extract the original from this .pck archive and repack afterwards")
	cmd.Flags().String("source", "", "original .translation file (default: the CSV name minus .csv)")
	cmd.Flags().String("locale", "", "locale tag to stamp on the rebuilt file (default: from DEFAULT_LOCALE)")
	cmd.Flags().String("output", "", "path for the rebuilt file (default: overwrite the source)")

	return cmd
}

// setupContext creates a cancellable context with signal handling.
func setupContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigCh
		log.Warn().Msg("Received shutdown signal, cancelling...")
		cancel()
	}()

	return ctx, cancel
}

// runExport handles the `export` command.
func runExport(files []string, pckPath, outDir string) error {
	ctx, cancel := setupContext()
	defer cancel()

	cfg := config.Load()

	if outDir != "" {
		if err := os.MkdirAll(outDir, 0755); err != nil {
			return fmt.Errorf("create output directory: %w", err)
		}
	}

	if pckPath != "" {
		resolved, err := extractFromArchive(ctx, cfg, pckPath, files)
		if err != nil {
			return err
		}
		files = resolved
	}

	log.Info().Int("files", len(files)).Msg("Starting export")

	results := worker.Run(ctx, cfg.WorkerCount, files, func(_ context.Context, path string) error {
		return exportOne(path, csvPathFor(path, outDir))
	})

	failed := 0
	for _, r := range results {
		if r.Err != nil {
			failed++
		}
	}
	if failed > 0 {
		return fmt.Errorf("export failed for %d of %d files", failed, len(results))
	}

	log.Info().Int("files", len(files)).Msg("Export complete")
	return nil
}

// extractFromArchive pulls each named file out of the archive into the
// working directory and returns the extracted paths.
func extractFromArchive(ctx context.Context, cfg *config.Config, pckPath string, names []string) ([]string, error) {
	tool, err := pck.Locate(cfg.PckToolPath)
	if err != nil {
		return nil, err
	}
	workDir, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("get working directory: %w", err)
	}

	resolved := make([]string, 0, len(names))
	for _, name := range names {
		base := filepath.Base(name)
		if err := tool.Extract(ctx, pckPath, base, workDir); err != nil {
			return nil, err
		}
		path, err := pck.FindExtracted(workDir, base)
		if err != nil {
			return nil, err
		}
		resolved = append(resolved, path)
	}
	return resolved, nil
}

// csvPathFor derives the CSV output path for an input file.
func csvPathFor(input, outDir string) string {
	if outDir != "" {
		return filepath.Join(outDir, filepath.Base(input)+".csv")
	}
	return input + ".csv"
}

// exportOne converts a single translation resource to CSV. The CSV is
// assembled in memory and written in one piece.
func exportOne(path, outPath string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}

	f, err := translation.Parse(data)
	if err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}

	var buf bytes.Buffer
	if err := csvio.Export(f.Table(), &buf); err != nil {
		return fmt.Errorf("render CSV for %s: %w", path, err)
	}
	if err := os.WriteFile(outPath, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("write %s: %w", outPath, err)
	}

	log.Info().
		Str("input", path).
		Str("output", outPath).
		Int("messages", f.Table().Len()).
		Str("locale", f.Locale()).
		Msg("Exported translation resource")
	return nil
}

// runImport handles the `import` command.
func runImport(csvPath, srcPath, pckPath, locale, outPath string) error {
	ctx, cancel := setupContext()
	defer cancel()

	cfg := config.Load()
	if locale == "" {
		locale = cfg.DefaultLocale
	}
	if _, err := language.Parse(locale); err != nil {
		log.Warn().Str("locale", locale).Msg("Not a valid BCP 47 tag, passing through unchanged")
	}

	cf, err := os.Open(csvPath)
	if err != nil {
		return fmt.Errorf("open %s: %w", csvPath, err)
	}
	rows, err := csvio.Import(cf)
	cf.Close()
	if err != nil {
		return fmt.Errorf("parse %s: %w", csvPath, err)
	}

	// The original binary defaults to the CSV name minus its extension,
	// resolved next to the CSV.
	srcName := filepath.Base(csvPath)
	if strings.EqualFold(filepath.Ext(srcName), ".csv") {
		srcName = srcName[:len(srcName)-len(".csv")]
	}
	if srcPath == "" {
		srcPath = filepath.Join(filepath.Dir(csvPath), srcName)
	}

	var tool *pck.Tool
	workDir := ""
	if pckPath != "" {
		if tool, err = pck.Locate(cfg.PckToolPath); err != nil {
			return err
		}
		if workDir, err = os.Getwd(); err != nil {
			return fmt.Errorf("get working directory: %w", err)
		}
		if err := tool.Extract(ctx, pckPath, filepath.Base(srcPath), workDir); err != nil {
			return err
		}
		if srcPath, err = pck.FindExtracted(workDir, filepath.Base(srcPath)); err != nil {
			return err
		}
	}

	data, err := os.ReadFile(srcPath)
	if err != nil {
		return fmt.Errorf("read %s: %w", srcPath, err)
	}
	f, err := translation.Parse(data)
	if err != nil {
		return fmt.Errorf("parse %s: %w", srcPath, err)
	}

	unknown := f.Table().Apply(rows)
	for _, u := range unknown {
		log.Warn().Str("key", u.Key).Msg("Row references a key absent from the original, skipped")
	}
	if len(unknown) > 0 {
		keys := make([]string, len(unknown))
		for i, u := range unknown {
			keys[i] = u.Key
		}
		log.Warn().
			Int("count", len(unknown)).
			Str("keys", textutil.Truncate(strings.Join(keys, ", "), 120)).
			Msg("Unknown keys were skipped")
	}

	f.SetLocale(locale)

	out, err := f.Encode()
	if err != nil {
		return fmt.Errorf("rebuild %s: %w", srcPath, err)
	}

	target := outPath
	if target == "" {
		target = srcPath
	}
	if err := os.WriteFile(target, out, 0644); err != nil {
		return fmt.Errorf("write %s: %w", target, err)
	}

	if pckPath != "" {
		rel, err := filepath.Rel(workDir, target)
		if err != nil {
			return fmt.Errorf("compute archive path for %s: %w", target, err)
		}
		if err := tool.Add(ctx, pckPath, rel); err != nil {
			return err
		}
		log.Info().Str("pck", pckPath).Str("file", rel).Msg("Repacked into archive")
	}

	log.Info().
		Int("applied", len(rows)-len(unknown)).
		Int("unknown", len(unknown)).
		Str("locale", locale).
		Str("output", target).
		Msg("Import complete")
	return nil
}
