package main

import (
	"errors"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/plateup-labs/plateup/internal/catalog"
	"github.com/plateup-labs/plateup/internal/config"
	"github.com/plateup-labs/plateup/internal/database"
	"github.com/plateup-labs/plateup/internal/kvstore"
	"github.com/plateup-labs/plateup/internal/logging"
	"github.com/plateup-labs/plateup/internal/ratings"
	"github.com/plateup-labs/plateup/internal/session"
	"github.com/plateup-labs/plateup/internal/tui"
	"github.com/plateup-labs/plateup/internal/users"
)

var (
	cfgFile string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "plateup",
		Short: "Shared recipe catalog for the terminal",
		PreRunE: func(cmd *cobra.Command, args []string) error {
			return initConfig()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runApp()
		},
	}

	setupFlags(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func setupFlags(cmd *cobra.Command) {
	config.ApplyDefaults(viper.GetViper())
	defaults := config.NewViper()
	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Path to configuration file")
	cmd.PersistentFlags().String("database-path", defaults.GetString("database.path"), "SQLite database path")
	cmd.PersistentFlags().String("log-level", defaults.GetString("log.level"), "Log level (debug, info, warn, error)")
	cmd.PersistentFlags().String("log-path", defaults.GetString("log.path"), "Log file path")
	cmd.PersistentFlags().String("placeholder-image-base", defaults.GetString("image.placeholder_base"), "Base URL for generated placeholder images")

	bindFlag(cmd, "database.path", "database-path")
	bindFlag(cmd, "log.level", "log-level")
	bindFlag(cmd, "log.path", "log-path")
	bindFlag(cmd, "image.placeholder_base", "placeholder-image-base")
}

func bindFlag(cmd *cobra.Command, key, flag string) {
	if err := viper.BindPFlag(key, cmd.PersistentFlags().Lookup(flag)); err != nil {
		panic(err)
	}
}

func initConfig() error {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	}

	if err := viper.ReadInConfig(); err != nil {
		var configNotFound viper.ConfigFileNotFoundError
		if cfgFile != "" && errors.As(err, &configNotFound) {
			return err
		}
	}

	return nil
}

func runApp() error {
	appConfig, err := config.Load(viper.GetViper())
	if err != nil {
		return err
	}

	logger, err := logging.NewLogger(appConfig.LogLevel, appConfig.LogPath)
	if err != nil {
		return err
	}
	defer logger.Sync() //nolint:errcheck

	db, err := database.OpenSQLite(appConfig.DatabasePath, logger)
	if err != nil {
		return err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	defer sqlDB.Close()

	store, err := kvstore.NewStore(kvstore.StoreConfig{Database: db, Logger: logger})
	if err != nil {
		return err
	}

	registry, err := users.NewRegistry(users.RegistryConfig{Store: store, Logger: logger})
	if err != nil {
		return err
	}

	ratedSets, err := ratings.NewService(ratings.ServiceConfig{Store: store, Logger: logger})
	if err != nil {
		return err
	}

	catalogService, err := catalog.NewService(catalog.ServiceConfig{
		Store:      store,
		RatedSets:  ratedSets,
		IDProvider: catalog.NewUUIDProvider(),
		Logger:     logger,
	})
	if err != nil {
		return err
	}

	app, err := tui.NewApp(tui.Dependencies{
		Catalog:         catalogService,
		Registry:        registry,
		RatedSets:       ratedSets,
		Session:         session.New(),
		PlaceholderBase: appConfig.PlaceholderImageBase,
		Logger:          logger,
	})
	if err != nil {
		return err
	}

	logger.Info("starting UI", zap.String("database", appConfig.DatabasePath))

	program := tea.NewProgram(app, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		logger.Error("UI terminated", zap.Error(err))
		return err
	}
	return nil
}
