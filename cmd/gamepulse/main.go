package main

import (
	"context"
	"errors"
	"flag"
	"os"
	"os/signal"
	"syscall"

	service "github.com/okian/gamepulse/internal/app"
	"github.com/okian/gamepulse/internal/cli"
	"github.com/okian/gamepulse/internal/config"
	"github.com/okian/gamepulse/pkg/logger"
)

const (
	exitFailure = 1
	exitUsage   = 2
)

func main() {
	logFile := flag.String("log", "", "Also append log output to this file")
	help := flag.Bool("help", false, "Show help")
	flag.Parse()

	if *help || flag.NArg() == 0 {
		cli.ShowHelp(os.Stdout)
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		os.Exit(exitFailure)
	}

	closeLog, err := cli.SetupLogging(cfg, *logFile)
	if err != nil {
		os.Stderr.WriteString("Failed to setup logging: " + err.Error() + "\n")
		os.Exit(exitFailure)
	}

	os.Exit(run(ctx, cfg, flag.Args(), closeLog))
}

func run(ctx context.Context, cfg *config.Config, args []string, closeLog func() error) int {
	defer func() { _ = closeLog() }()
	log := logger.Get()

	opts := []service.Option{service.WithLogger(log.Named("service"))}
	if src := service.NewRedditSource(cfg.Fetch, log); src != nil {
		opts = append(opts, service.WithCommentSource(src))
	}
	svc := service.New(cfg, opts...)
	if err := svc.Start(ctx); err != nil {
		log.Error(ctx, "failed to start service", logger.Error(err))
		return exitFailure
	}
	defer svc.Stop()

	env := &cli.Env{Config: cfg, Service: svc, Stdout: os.Stdout, Log: log.Named("cli")}
	if err := cli.Run(ctx, env, args); err != nil {
		if errors.Is(err, cli.ErrUsage) {
			os.Stderr.WriteString(err.Error() + "\n\n")
			cli.ShowHelp(os.Stderr)
			return exitUsage
		}
		log.Error(ctx, "command failed", logger.String("command", args[0]), logger.Error(err))
		return exitFailure
	}
	return 0
}
