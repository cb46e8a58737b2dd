package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Sankalp-SISL/MIDC-chatbot/internal/bootstrap"
	"github.com/Sankalp-SISL/MIDC-chatbot/internal/common/config"
	"github.com/Sankalp-SISL/MIDC-chatbot/internal/common/logger"
	"github.com/Sankalp-SISL/MIDC-chatbot/internal/knowledge"
)

func newPushCmd() *cobra.Command {
	var (
		target     string
		configPath string
		dryRun     bool
	)

	cmd := &cobra.Command{
		Use:   "push [root]",
		Short: "Copy a file-based knowledge base into Elasticsearch or PostgreSQL",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if target != "elasticsearch" && target != "postgres" {
				return fmt.Errorf("--target must be elasticsearch or postgres, got %q", target)
			}

			log := logger.NewStructured("info", "console")
			ctx := cmd.Context()

			docs, err := knowledge.NewFileRepository(args[0], log).ListDocuments(ctx)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if dryRun {
				fmt.Fprintf(out, "dry run: %d section(s) would be pushed to %s\n", len(docs), target)
				return nil
			}

			cfg, err := loadConfig(configPath)
			if err != nil {
				return err
			}
			writer, closeFn, err := bootstrap.NewWriter(ctx, cfg, target, log)
			if err != nil {
				return err
			}
			defer closeFn()

			for _, d := range docs {
				if err := writer.Upsert(ctx, d); err != nil {
					return fmt.Errorf("push %s: %w", d.SectionID, err)
				}
				fmt.Fprintf(out, "pushed %s (%d chunks)\n", d.SectionID, len(d.Chunks))
			}
			fmt.Fprintf(out, "%d section(s) pushed to %s\n", len(docs), target)
			return nil
		},
	}

	cmd.Flags().StringVar(&target, "target", "", "Destination store: elasticsearch or postgres")
	cmd.Flags().StringVar(&configPath, "config", "", "Config file (defaults to configs/config.yaml)")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Load and count sections without writing")
	_ = cmd.MarkFlagRequired("target")
	return cmd
}

func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.LoadFromFile(path)
	}
	return config.Load()
}
