package system

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/Alijeyrad/medibook_backend/config"
	"github.com/Alijeyrad/medibook_backend/internal/app"
	"github.com/Alijeyrad/medibook_backend/pkg/database"
)

func NewPurgeCodesCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "purge-codes",
		Short: "Delete expired booking verification codes",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfgPath, err := cmd.Root().PersistentFlags().GetString("config")
			if err != nil {
				return fmt.Errorf("failed to get config flag: %w", err)
			}
			cfg, err := config.ReadConfig(filepath.Dir(cfgPath))
			if err != nil {
				return fmt.Errorf("failed to read config: %w", err)
			}

			client, err := database.NewRepoClient(cfg.Database)
			if err != nil {
				return fmt.Errorf("failed to open database: %w", err)
			}
			defer client.Close()

			timeout := time.Duration(cfg.Server.TimeoutSeconds) * time.Second
			ctx, cancel := context.WithTimeout(context.Background(), timeout)
			defer cancel()

			n, err := app.PurgeCodesOnce(ctx, client, time.Now())
			if err != nil {
				return fmt.Errorf("failed to purge codes: %w", err)
			}
			fmt.Printf("Purged %d expired codes.\n", n)
			return nil
		},
	}

	return cmd
}
