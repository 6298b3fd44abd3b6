package main

import (
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"time"

	_ "github.com/joho/godotenv/autoload"

	"github.com/sirupsen/logrus"

	"github.com/sketchparty/sketchparty/internal/config"
	"github.com/sketchparty/sketchparty/internal/game"
	"github.com/sketchparty/sketchparty/internal/handlers"
	"github.com/sketchparty/sketchparty/internal/middleware"
	"github.com/sketchparty/sketchparty/internal/prompts"
)

func main() {
	logger := logrus.New()
	for _, arg := range os.Args[1:] {
		if arg == "-v" {
			logger.SetLevel(logrus.DebugLevel)
			logger.Debug("verbose mode enabled")
		}
	}

	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("invalid configuration: %v", err)
	}

	rotator, err := prompts.NewRotator(cfg.UnusedPromptsFile, cfg.UsedPromptsFile)
	if err != nil {
		logger.Fatalf("failed to load prompt pools: %v", err)
	}
	if rotator.IsExhausted() {
		logger.Warnf("no unused prompts in %s; add some before starting a game", cfg.UnusedPromptsFile)
	}

	g := game.NewGame(cfg, rotator)
	gs := handlers.NewGameServer(logger, g)

	logger.WithFields(logrus.Fields{
		"drawingTime":  cfg.DrawingTime,
		"guessingTime": cfg.GuessingTime,
		"votingTime":   cfg.VotingTime,
		"rounds":       cfg.NumRounds,
		"players":      fmt.Sprintf("%d-%d", cfg.MinPlayers, cfg.MaxPlayers),
		"prompts":      rotator.Remaining(),
	}).Info("game configured")

	server := &http.Server{
		Handler:      middleware.LogMiddleware(logger)(gs),
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
	}

	l, err := net.Listen("tcp", fmt.Sprintf(":%s", cfg.Port))
	if err != nil {
		logger.Fatalf("failed to listen: %v", err)
	}
	logger.Infof("listening on %s", l.Addr())

	errc := make(chan error, 1)
	go func() {
		errc <- server.Serve(l)
	}()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, os.Interrupt)
	select {
	case err := <-errc:
		logger.Errorf("failed to serve: %v", err)
	case sig := <-sigs:
		logger.Infof("terminating: %v", sig)
	}
}
