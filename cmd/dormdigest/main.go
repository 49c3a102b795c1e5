package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"dormdigest/internal/config"
	"dormdigest/internal/logger"
	"dormdigest/internal/repository/mysql"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "dormdigest",
	Short: "DormDigest club events store and API",
	Long: `DormDigest keeps campus club events, their clubs, submitters,
moderation state and sessions.

Commands:
  serve        - run the HTTP API
  migrate      - create or update the schema and exit
  grant-admin  - promote a user to site administrator`,
	SilenceUsage: true,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "YAML config file (CONFIG_FILE overrides)")
	rootCmd.AddCommand(serveCmd, migrateCmd, grantAdminCmd)
}

// bootstrap loads config, builds the logger and opens the store. The
// returned cleanup closes the store and flushes the logger.
func bootstrap() (*config.Config, *zap.Logger, *gorm.DB, func(), error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, nil, nil, err
	}
	log, err := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	if err != nil {
		return nil, nil, nil, nil, err
	}
	db, err := mysql.Open(cfg.Database, log)
	if err != nil {
		_ = log.Sync()
		return nil, nil, nil, nil, err
	}
	cleanup := func() {
		if err := mysql.Close(db); err != nil {
			log.Warn("close database", zap.Error(err))
		}
		_ = log.Sync()
	}
	return cfg, log, db, cleanup, nil
}
