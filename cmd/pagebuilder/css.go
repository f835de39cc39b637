package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/go-drift/pagebuilder/internal/config"
	"github.com/go-drift/pagebuilder/pkg/css"
)

func newCSSCmd(cfgPath *string) *cobra.Command {
	var schemaPath, settingsPath, id string
	cmd := &cobra.Command{
		Use:   "css",
		Short: "Generate the stylesheet of an element",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*cfgPath)
			if err != nil {
				return err
			}
			schema, err := loadSchema(schemaPath)
			if err != nil {
				return err
			}
			values, err := loadSettings(settingsPath)
			if err != nil {
				return err
			}
			values, err = withDefaults(schema, values)
			if err != nil {
				return err
			}

			wrapper := cfg.WrapperSelector + " ." + cfg.ElementClassPrefix + id
			rules := css.Generate(schema.StyleControls(), values, schema,
				[]string{css.PlaceholderID, css.PlaceholderWrapper},
				[]string{id, wrapper})
			for _, rule := range rules {
				if _, err := fmt.Fprintln(cmd.OutOrStdout(), rule.String()); err != nil {
					return err
				}
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&schemaPath, "schema", "s", "", "control schema file")
	cmd.Flags().StringVar(&settingsPath, "settings", "", "element settings JSON")
	cmd.Flags().StringVar(&id, "id", "preview", "element id")
	return cmd
}
