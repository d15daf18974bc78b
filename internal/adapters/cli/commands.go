package cli

import (
	"errors"
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/kirillkom/docshelf/internal/core/usecase"
	"github.com/kirillkom/docshelf/internal/infrastructure/report"
)

func (c *cli) runCommand() *cobra.Command {
	var noUpload bool
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the whole batch: sort, search, classify, then upload every document",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) (err error) {
			if c.flags.reportPath != "" {
				if _, err := report.FormatFromPath(c.flags.reportPath); err != nil {
					return err
				}
			}

			app, err := c.newApp(cmd.Context(), !noUpload)
			if err != nil {
				return err
			}
			defer app.Close()
			defer func() { app.PushMetrics(err == nil) }()

			rep, err := app.Run.Run(cmd.Context(), usecase.RunOptions{
				RunID:     app.RunID,
				Directory: c.cfg.InputDirectory,
				Query:     c.cfg.SearchQuery,
			})
			if rep == nil {
				return err
			}

			printSummary(cmd.OutOrStdout(), rep)
			if c.flags.reportPath != "" {
				if reportErr := report.WriteFile(app.Fs, c.flags.reportPath, rep); reportErr != nil {
					return errors.Join(err, reportErr)
				}
			}
			return err
		},
	}
	cmd.Flags().BoolVar(&noUpload, "no-upload", false, "skip the upload stage")
	cmd.Flags().StringVar(&c.flags.reportPath, "report", "", "write the run report to this .json, .yaml or .xlsx file")
	return cmd
}

func (c *cli) sortCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "sort",
		Short: "Print documents ordered by title",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := c.newApp(cmd.Context(), false)
			if err != nil {
				return err
			}
			defer app.Close()

			docs, err := analyzable(cmd.Context(), app)
			if err != nil {
				return err
			}
			sorted, err := app.Sorter.Sort(cmd.Context(), docs)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, doc := range sorted {
				text, _ := doc.CachedText()
				fmt.Fprintf(out, "%s\t%s\n", doc.Path, usecase.TitleKey(text, c.cfg.TitleKeyLength))
			}
			return nil
		},
	}
}

func (c *cli) searchCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "search [query]",
		Short: "Print documents whose text contains the query, ignoring case",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			query := c.cfg.SearchQuery
			if len(args) == 1 {
				query = args[0]
			}

			app, err := c.newApp(cmd.Context(), false)
			if err != nil {
				return err
			}
			defer app.Close()

			docs, err := analyzable(cmd.Context(), app)
			if err != nil {
				return err
			}
			matches, err := app.Searcher.Search(cmd.Context(), query, docs)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Search found: %d\n", len(matches))
			for _, doc := range matches {
				fmt.Fprintln(out, doc.Path)
			}
			return nil
		},
	}
}

func (c *cli) classifyCommand() *cobra.Command {
	var showHeuristic bool
	cmd := &cobra.Command{
		Use:   "classify",
		Short: "Print the category of every document",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := c.newApp(cmd.Context(), false)
			if err != nil {
				return err
			}
			defer app.Close()

			docs, err := analyzable(cmd.Context(), app)
			if err != nil {
				return err
			}
			result, err := app.Classifier.Classify(cmd.Context(), docs)
			if err != nil {
				return err
			}

			paths := make([]string, 0, len(result.Labels))
			for p := range result.Labels {
				paths = append(paths, p)
			}
			sort.Strings(paths)
			out := cmd.OutOrStdout()
			for _, p := range paths {
				if showHeuristic {
					fmt.Fprintf(out, "%s\t%s\t%s\n", p, result.Labels[p], result.Heuristic[p])
					continue
				}
				fmt.Fprintf(out, "%s\t%s\n", p, result.Labels[p])
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&showHeuristic, "heuristic", false, "also print the keyword label each document was trained with")
	return cmd
}

func (c *cli) uploadCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "upload",
		Short: "Upload every document of the input directory without analysing it",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := c.newApp(cmd.Context(), true)
			if err != nil {
				return err
			}
			defer app.Close()
			if app.Uploader == nil {
				return errors.New("upload sink is disabled (upload.sink=none)")
			}

			corpus, err := app.Loader.LoadCorpus(cmd.Context(), c.cfg.InputDirectory)
			if err != nil {
				return err
			}
			results := app.Uploader.UploadAll(cmd.Context(), corpus)
			failed := printUploads(cmd.OutOrStdout(), results)
			app.PushMetrics(failed == 0)
			if failed > 0 {
				return fmt.Errorf("%d of %d uploads failed", failed, len(results))
			}
			return nil
		},
	}
}
