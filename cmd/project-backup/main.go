package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/sunr3d/project-backup/internal/config"
	"github.com/sunr3d/project-backup/internal/entrypoint"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "ошибка: %v\n", err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	var (
		envFile      string
		projectsFile string
	)

	cmd := &cobra.Command{
		Use:           "project-backup",
		Short:         "Резервное копирование директорий и баз данных проектов в облачное хранилище",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}

			if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
				return fmt.Errorf("не удалось загрузить %s: %w", envFile, err)
			}

			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if projectsFile != "" {
				cfg.ProjectsFile = projectsFile
			}

			log, err := newLogger(cfg.LogLevel, cfg.LogFormat)
			if err != nil {
				return err
			}
			defer log.Sync()

			if err := entrypoint.Run(ctx, cfg, log); err != nil {
				log.Error("резервное копирование не выполнено", zap.Error(err))
				return err
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&envFile, "env-file", ".env", "файл с переменными окружения")
	cmd.Flags().StringVar(&projectsFile, "projects", "", "YAML-реестр проектов (перекрывает PROJECTS_FILE)")
	return cmd
}

func newLogger(level, format string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("некорректный LOG_LEVEL %q: %w", level, err)
	}

	zcfg := zap.NewProductionConfig()
	if format == "console" {
		zcfg = zap.NewDevelopmentConfig()
	}
	zcfg.Level = zap.NewAtomicLevelAt(lvl)

	return zcfg.Build()
}
