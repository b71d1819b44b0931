package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Clark-Hu/hotel-review-sentiment/db"
	"github.com/Clark-Hu/hotel-review-sentiment/internal/app"
	"github.com/Clark-Hu/hotel-review-sentiment/internal/repository"
)

func newMigrateCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending schema migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := app.OpenStore(cmd.Context(), c.cfg, c.logger)
			if err != nil {
				return fmt.Errorf("connect database: %w", err)
			}
			defer st.Close()

			if err := st.Migrate(cmd.Context(), db.Migrations); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "migrations applied")
			return nil
		},
	}
}

func newSeedCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Insert sample hotels and reviews into an empty database",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := app.OpenStore(cmd.Context(), c.cfg, c.logger)
			if err != nil {
				return fmt.Errorf("connect database: %w", err)
			}
			defer st.Close()

			seeded, err := repository.New(st).Seed(cmd.Context(), c.logger)
			if err != nil {
				return err
			}
			if seeded {
				fmt.Fprintln(cmd.OutOrStdout(), "sample data inserted")
			} else {
				fmt.Fprintln(cmd.OutOrStdout(), "database already has hotels; nothing to do")
			}
			return nil
		},
	}
}

func newResetCmd(c *cli) *cobra.Command {
	var (
		force bool
		seed  bool
	)
	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Drop every table and re-apply the migrations",
		Long: `Drop every table and re-apply the migrations.

All hotels and reviews are deleted. Pass --force to confirm.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !force {
				return fmt.Errorf("reset deletes all data; re-run with --force")
			}
			st, err := app.OpenStore(cmd.Context(), c.cfg, c.logger)
			if err != nil {
				return fmt.Errorf("connect database: %w", err)
			}
			defer st.Close()

			if err := st.Reset(cmd.Context(), db.Migrations); err != nil {
				return err
			}
			if seed {
				if _, err := repository.New(st).Seed(cmd.Context(), c.logger); err != nil {
					return err
				}
			}
			fmt.Fprintln(cmd.OutOrStdout(), "database reset")
			return nil
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "confirm data loss")
	cmd.Flags().BoolVar(&seed, "seed", false, "insert sample data after the reset")
	return cmd
}
