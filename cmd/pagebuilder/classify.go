package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/go-drift/pagebuilder/pkg/classify"
	"github.com/go-drift/pagebuilder/pkg/settings"
)

func newClassifyCmd() *cobra.Command {
	var schemaPath, beforePath, afterPath string
	cmd := &cobra.Command{
		Use:   "classify",
		Short: "Show the render action a settings change requires",
		RunE: func(cmd *cobra.Command, args []string) error {
			schema, err := loadSchema(schemaPath)
			if err != nil {
				return err
			}
			before, err := loadSettings(beforePath)
			if err != nil {
				return err
			}
			after, err := loadSettings(afterPath)
			if err != nil {
				return err
			}

			keys := settings.Diff(before, after)
			res := classify.Explain(keys, schema, schema.TemplateType())

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "action:  %s\n", res.Action)
			fmt.Fprintf(out, "changed: %s\n", joinOrNone(keys))
			fmt.Fprintf(out, "content: %s\n", joinOrNone(res.Content))
			fmt.Fprintf(out, "unknown: %s\n", joinOrNone(res.Unknown))
			return nil
		},
	}
	cmd.Flags().StringVarP(&schemaPath, "schema", "s", "", "control schema file")
	cmd.Flags().StringVar(&beforePath, "before", "", "settings JSON before the change")
	cmd.Flags().StringVar(&afterPath, "after", "", "settings JSON after the change")
	return cmd
}

func joinOrNone(keys []string) string {
	if len(keys) == 0 {
		return "-"
	}
	return strings.Join(keys, ", ")
}
