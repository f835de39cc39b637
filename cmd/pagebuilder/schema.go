package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/go-drift/pagebuilder/pkg/controls"
)

func newSchemaCmd() *cobra.Command {
	var schemaPath string
	cmd := &cobra.Command{
		Use:   "schema",
		Short: "List the controls of an element schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			schema, err := loadSchema(schemaPath)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s (%s template, schema %s)\n\n", schema.ElementType(), schema.TemplateType(), versionOrNone(schema.Version()))

			w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tTYPE\tRENDER\tROLE\tDEVICE")
			for _, c := range schema.Controls() {
				device := string(c.Device)
				if device == "" {
					device = "-"
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", c.Name, c.Type, c.RenderType, controlRole(c), device)
			}
			return w.Flush()
		},
	}
	cmd.Flags().StringVarP(&schemaPath, "schema", "s", "", "control schema file")
	return cmd
}

func controlRole(c controls.Control) string {
	var roles []string
	if c.IsStyleControl() {
		roles = append(roles, "style")
	}
	if c.IsClassControl() {
		roles = append(roles, "class")
	}
	if c.IsFontControl() {
		roles = append(roles, "font")
	}
	if len(roles) == 0 {
		return "content"
	}
	return strings.Join(roles, ",")
}

func versionOrNone(v string) string {
	if v == "" {
		return "unversioned"
	}
	return v
}
