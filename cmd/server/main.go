package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/rohits-web03/foodlink/internal/api"
	"github.com/rohits-web03/foodlink/internal/api/handlers"
	"github.com/rohits-web03/foodlink/internal/config"
	"github.com/rohits-web03/foodlink/internal/donation"
	"github.com/rohits-web03/foodlink/internal/repositories"
)

// @title FoodLink API
// @version 1.0
// @description Food donation coordination platform connecting donors, NGOs, and delivery riders.
func main() {
	repositories.ConnectDatabase()
	repositories.InitR2(
		config.Envs.R2.AccessKeyID,
		config.Envs.R2.SecretAccessKey,
		config.Envs.R2.AccountID,
		config.Envs.R2.BucketName,
		config.Envs.R2.Region,
	)

	store := repositories.NewDonationStore(repositories.DB)
	handlers.Donations = donation.NewManager(store, donation.SystemClock)
	sweeper := donation.NewSweeper(store, donation.SystemClock, config.Envs.SweepInterval)

	server := &http.Server{
		Addr:    fmt.Sprintf(":%s", config.Envs.Port),
		Handler: api.SetupRouter(),
		// Timeouts prevent resource exhaustion from slow clients
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Printf("Starting FoodLink server on port: %s", config.Envs.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})
	g.Go(func() error {
		if err := sweeper.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Fatalf("Server exited with error: %v", err)
	}
	log.Println("Server stopped")
}
