package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"pkt.systems/pslog"

	"github.com/go-drift/pagebuilder/internal/config"
	"github.com/go-drift/pagebuilder/pkg/css"
	"github.com/go-drift/pagebuilder/pkg/editor"
	"github.com/go-drift/pagebuilder/pkg/fonts"
)

func newRenderCmd(cfgPath *string) *cobra.Command {
	var schemaPath, settingsPath, id string
	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render an element with a local template",
		Long: `Render mounts one element the way the editor does and prints its
markup, its stylesheet and the fonts it requested. Only element types
with a local template can be rendered.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := pslog.Ctx(ctx)

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

			fontRegistry := fonts.NewRegistry(cfg.Fonts.BaseURL)
			if cfg.Fonts.Dir != "" {
				families, err := fontRegistry.LoadDir(cfg.Fonts.Dir)
				if err != nil {
					return fmt.Errorf("load fonts: %w", err)
				}
				logger.Debug("local fonts registered", "dir", cfg.Fonts.Dir, "families", families)
			}

			sink := css.NewMemorySink()
			ed, err := editor.New(editor.Options{
				Sink:        sink,
				Fonts:       fontRegistry,
				Wrapper:     cfg.WrapperSelector,
				ClassPrefix: cfg.ElementClassPrefix,
				Logger:      logger,
			})
			if err != nil {
				return err
			}
			defer ed.Close()
			if cfg.SchemaDir != "" {
				if _, err := ed.LoadTypes(cfg.SchemaDir); err != nil {
					return err
				}
			}
			if _, ok := ed.Type(schema.ElementType()); !ok {
				if err := ed.RegisterType(schema); err != nil {
					return err
				}
			}

			el, err := ed.Create(ctx, id, schema.ElementType(), values)
			if err != nil {
				return err
			}
			ed.Flush()

			out := cmd.OutOrStdout()
			if _, err := fmt.Fprintln(out, el.OuterHTML()); err != nil {
				return err
			}
			if _, err := sink.WriteTo(out); err != nil {
				return err
			}
			return writeFonts(out, fontRegistry)
		},
	}
	cmd.Flags().StringVarP(&schemaPath, "schema", "s", "", "control schema file")
	cmd.Flags().StringVar(&settingsPath, "settings", "", "element settings JSON")
	cmd.Flags().StringVar(&id, "id", "preview", "element id")
	return cmd
}

func writeFonts(w io.Writer, r *fonts.Registry) error {
	if faces := r.FontFaces(); faces != "" {
		if _, err := fmt.Fprintf(w, "<style id=\"pb-fonts\">%s</style>\n", faces); err != nil {
			return err
		}
	}
	for _, asset := range r.Assets() {
		if asset.Local {
			continue
		}
		if _, err := fmt.Fprintf(w, "<link rel=\"stylesheet\" href=%q>\n", asset.URL); err != nil {
			return err
		}
	}
	return nil
}
