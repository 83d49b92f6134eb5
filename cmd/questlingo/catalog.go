package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/questlingo/backend/internal/catalog"
	"github.com/spf13/cobra"
)

func newCatalogCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Inspect the lesson catalog",
	}

	var dir string
	validate := &cobra.Command{
		Use:   "validate",
		Short: "Load and validate lesson files",
		Long:  "Load the embedded lesson files, or the *.toml files of --dir, and report the lessons per language.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			var (
				c   *catalog.Catalog
				err error
			)
			if dir == "" {
				c, err = catalog.Load()
			} else {
				c, err = catalog.LoadFS(os.DirFS(dir), ".")
			}
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "LANGUAGE\tLESSONS\tSTEPS")
			for _, code := range c.TargetLanguages() {
				lessons := c.GetLessonsByLanguage(code)
				steps := 0
				for i := range lessons {
					steps += lessons[i].TotalSteps()
				}
				fmt.Fprintf(w, "%s\t%d\t%d\n", code, len(lessons), steps)
			}
			if err := w.Flush(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "catalog OK: %d lessons\n", len(c.GetAllLessons()))
			return nil
		},
	}
	validate.Flags().StringVar(&dir, "dir", "", "directory of lesson files (default: embedded catalog)")

	cmd.AddCommand(validate)
	return cmd
}
