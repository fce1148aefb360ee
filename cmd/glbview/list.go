package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"

	"glbview/internal/registry"
	"glbview/internal/viewer"
	"glbview/pkg/types"
)

func newListCmd(o *options) *cobra.Command {
	var (
		server string
		strict bool
		asJSON bool
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the models the discovery query would return",
		Example: "  glbview list --models-dir ./public/models\n" +
			"  glbview list --server http://localhost:3000 --json",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolveConfig(cmd, o, os.Getenv)
			if err != nil {
				return err
			}
			var models []types.ModelDescriptor
			switch {
			case server != "":
				ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Second)
				defer cancel()
				c := viewer.NewClient(server, &http.Client{Timeout: 10 * time.Second})
				models, err = c.ListModels(ctx)
			case strict:
				models, err = registry.LoadDir(cfg.ModelsDir, cfg.ModelsPath)
			default:
				models = registry.NewService(cfg.ModelsDir, cfg.ModelsPath, newLogger(cmd.ErrOrStderr(), cfg.LogLevel, cfg.LogJSON)).ListModels()
			}
			if err != nil {
				return fmt.Errorf("failed to list models: %w", err)
			}
			return printModels(cmd.OutOrStdout(), models, asJSON)
		},
	}
	cmd.Flags().StringVar(&server, "server", "", "Query a running server instead of the local directory")
	cmd.Flags().BoolVar(&strict, "strict", false, "Fail when the models directory cannot be read")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the discovery response as JSON")
	return cmd
}

func printModels(w io.Writer, models []types.ModelDescriptor, asJSON bool) error {
	if models == nil {
		models = []types.ModelDescriptor{}
	}
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(types.ModelsResponse{Models: models})
	}
	fmt.Fprintf(w, "%-30s %-50s %s\n", "NAME", "URL", "DESCRIPTION")
	for _, m := range models {
		fmt.Fprintf(w, "%-30s %-50s %s\n", m.Name, m.URL, m.Description)
	}
	return nil
}
