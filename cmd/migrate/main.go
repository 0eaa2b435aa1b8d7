package main

import (
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"complyhr/internal/pkg/logger"
	"complyhr/internal/platform/config"
	"complyhr/internal/platform/database"
	"complyhr/migrations"
)

var configPath string

func main() {
	root := &cobra.Command{
		Use:           "migrate",
		Short:         "Manage the complyhr database schema and reference data",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&configPath, "config", "configs/config.yaml", "Path to config file")
	root.AddCommand(upCmd(), seedCmd())

	if err := root.Execute(); err != nil {
		log.Error().Err(err).Msg("migrate failed")
		os.Exit(1)
	}
}

func setup() (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	logger.Init(cfg.Logging)
	return cfg, nil
}

func upCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "up",
		Short: "Apply pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := setup()
			if err != nil {
				return err
			}
			db, err := database.Open(cfg.Database)
			if err != nil {
				return err
			}
			defer db.Close()

			applied, err := migrations.Apply(cmd.Context(), db)
			if err != nil {
				return err
			}
			log.Info().Strs("versions", applied).Msg("migrations complete")
			return nil
		},
	}
}

func seedCmd() *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Upsert policy templates and legal alerts from a YAML file",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := setup()
			if err != nil {
				return err
			}
			f, err := os.Open(file)
			if err != nil {
				return err
			}
			defer f.Close()

			seed, err := loadSeed(f)
			if err != nil {
				return err
			}

			db, err := database.Open(cfg.Database)
			if err != nil {
				return err
			}
			defer db.Close()

			templates, alerts, err := applySeed(cmd.Context(), db, seed)
			if err != nil {
				return err
			}
			log.Info().Int("policy_templates", templates).Int("legal_alerts", alerts).Msg("seed complete")
			return nil
		},
	}
	cmd.Flags().StringVar(&file, "file", "configs/seed.yaml", "Seed file")
	return cmd
}
