package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/drafter/internal/core/domain"
	"github.com/custodia-labs/drafter/internal/logger"
	"github.com/custodia-labs/drafter/internal/normalisers"
	"github.com/custodia-labs/drafter/internal/postprocessors"
	"github.com/custodia-labs/drafter/internal/postprocessors/chunker"
)

var indexClear bool

var indexCmd = &cobra.Command{
	Use:   "index [paths...]",
	Short: "Index text files for grounding",
	Long: `Converts files to plain text, splits them into overlapping fragments
and indexes them. Directories are walked for text, Markdown and HTML files
(.txt, .text, .rst, .md, .markdown, .html, .htm, .xhtml); files named
explicitly are read as plain text when their format is unknown.
Re-indexing a file replaces its previous fragments.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runIndex,
}

var sourcesCmd = &cobra.Command{
	Use:   "sources",
	Short: "List indexed sources",
	RunE:  runSourcesList,
}

var sourcesRemoveCmd = &cobra.Command{
	Use:   "remove [source]",
	Short: "Remove an indexed source",
	Args:  cobra.ExactArgs(1),
	RunE:  runSourcesRemove,
}

func init() {
	indexCmd.Flags().BoolVar(&indexClear, "clear", false, "remove every indexed fragment first")
	rootCmd.AddCommand(indexCmd)

	sourcesCmd.AddCommand(sourcesRemoveCmd)
	rootCmd.AddCommand(sourcesCmd)
}

func runIndex(cmd *cobra.Command, args []string) error {
	if retrievalService == nil {
		return errors.New("retrieval service not configured")
	}
	ctx := cmd.Context()

	pipeline, err := newPipeline()
	if err != nil {
		return err
	}

	files, err := collectFiles(args, pipeline.Handles)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return errors.New("no indexable files found")
	}

	if indexClear {
		if err := retrievalService.Clear(ctx); err != nil {
			return fmt.Errorf("clear index: %w", err)
		}
	}

	logger.Section("Index")
	total := 0
	for _, path := range files {
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read %s: %w", path, err)
		}

		fragments, err := pipeline.Process(path, data)
		if err != nil {
			return fmt.Errorf("process %s: %w", path, err)
		}
		if err := retrievalService.IndexSource(ctx, path, fragments); err != nil {
			return fmt.Errorf("index %s: %w", path, err)
		}
		cmd.Printf("  %s: %d fragment(s)\n", path, len(fragments))
		total += len(fragments)
	}

	cmd.Printf("Indexed %d fragment(s) from %d file(s).\n", total, len(files))
	return nil
}

// newPipeline builds the ingestion pipeline from the retrieval settings.
func newPipeline() (*postprocessors.Pipeline, error) {
	retrieval := domain.DefaultAppSettings().Retrieval
	if settingsService != nil {
		settings, err := settingsService.Get()
		if err != nil {
			return nil, fmt.Errorf("failed to get settings: %w", err)
		}
		retrieval = settings.Retrieval
	}
	c := chunker.New(
		chunker.WithChunkSize(retrieval.ChunkSize),
		chunker.WithOverlap(retrieval.ChunkOverlap),
	)
	return postprocessors.NewPipeline(normalisers.Defaults(), c), nil
}

// collectFiles expands directories and returns absolute file paths.
// Files found by walking a directory are kept only when accept returns true.
func collectFiles(paths []string, accept func(path string) bool) ([]string, error) {
	var files []string
	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			return nil, fmt.Errorf("resolve %s: %w", p, err)
		}
		info, err := os.Stat(abs)
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", p, err)
		}
		if !info.IsDir() {
			files = append(files, abs)
			continue
		}

		err = filepath.WalkDir(abs, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() && strings.HasPrefix(d.Name(), ".") && path != abs {
				return filepath.SkipDir
			}
			if !d.IsDir() && accept(path) {
				files = append(files, path)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("walk %s: %w", p, err)
		}
	}
	return files, nil
}

func runSourcesList(cmd *cobra.Command, _ []string) error {
	if retrievalService == nil {
		return errors.New("retrieval service not configured")
	}

	sources, err := retrievalService.Sources(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to list sources: %w", err)
	}

	if len(sources) == 0 {
		cmd.Println("No sources indexed.")
		return nil
	}
	for _, s := range sources {
		cmd.Println(s)
	}
	return nil
}

func runSourcesRemove(cmd *cobra.Command, args []string) error {
	if retrievalService == nil {
		return errors.New("retrieval service not configured")
	}

	if err := retrievalService.RemoveSource(cmd.Context(), args[0]); err != nil {
		return fmt.Errorf("failed to remove source: %w", err)
	}
	cmd.Printf("Removed %s\n", args[0])
	return nil
}
