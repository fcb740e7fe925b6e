package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/Ucovy-Connects-Inc/playwright-e2e-automation-framework/internal/cli"
	"github.com/Ucovy-Connects-Inc/playwright-e2e-automation-framework/internal/cli/commands"
	"github.com/Ucovy-Connects-Inc/playwright-e2e-automation-framework/internal/config"
	"github.com/Ucovy-Connects-Inc/playwright-e2e-automation-framework/internal/database"
	"github.com/Ucovy-Connects-Inc/playwright-e2e-automation-framework/internal/llm"
	"github.com/Ucovy-Connects-Inc/playwright-e2e-automation-framework/internal/logger"
	"github.com/Ucovy-Connects-Inc/playwright-e2e-automation-framework/internal/migrations"
)

func main() {
	os.Exit(run())
}

func run() int {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	log, err := logger.New(cfg.Logger.Env, cfg.Logger.Level)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	env := &commands.Env{
		Cfg:      cfg,
		Log:      log.Logger,
		OpenPage: cli.BrowserOpener(cfg, log.Logger),
	}

	// История запусков пишется только при настроенной БД.
	if cfg.Database.Enabled() {
		if err := migrations.Run(cfg, log.Logger); err != nil {
			log.Fatal("Ошибка миграций", zap.Error(err))
		}

		db, err := database.New(cfg, log.Logger)
		if err != nil {
			log.Fatal("Ошибка подключения к БД", zap.Error(err))
		}
		defer db.Close(log.Logger)

		repo := database.NewResultRepository(db.DB)
		log.Info("история запусков включена", zap.String("run_id", repo.RunID().String()))
		env.Results = repo
	}

	if cfg.OpenAI.KeyAI != "" {
		env.Suggester = llm.NewClient(llm.Config{
			APIKey:            cfg.OpenAI.KeyAI,
			Model:             cfg.OpenAI.Model,
			MaxTokens:         cfg.OpenAI.MaxTokens,
			RequestsPerMinute: cfg.OpenAI.RequestsPerMinute,
		}, log.Logger)
	}

	return cli.Execute(ctx, env, os.Args[1:])
}
