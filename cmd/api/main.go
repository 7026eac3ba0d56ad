package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/mapa-lotes/lotmap-backend/config"
	"github.com/mapa-lotes/lotmap-backend/internal/auth"
	authrepo "github.com/mapa-lotes/lotmap-backend/internal/auth/repository"
	authservice "github.com/mapa-lotes/lotmap-backend/internal/auth/service"
	"github.com/mapa-lotes/lotmap-backend/internal/bootstrap"
	"github.com/mapa-lotes/lotmap-backend/internal/catalog"
	"github.com/mapa-lotes/lotmap-backend/internal/changefeed"
	lotrepo "github.com/mapa-lotes/lotmap-backend/internal/lots/repository"
	lotservice "github.com/mapa-lotes/lotmap-backend/internal/lots/service"
	projrepo "github.com/mapa-lotes/lotmap-backend/internal/projects/repository"
	projservice "github.com/mapa-lotes/lotmap-backend/internal/projects/service"
	"github.com/mapa-lotes/lotmap-backend/internal/resync"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	bootstrap.SetGinMode(cfg.App.Environment)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := bootstrap.OpenDB(&cfg.Database)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	rdb, err := bootstrap.OpenRedis(ctx, &cfg.Redis)
	if err != nil {
		log.Fatalf("redis: %v", err)
	}

	authClient, err := auth.InitializeFirebase(cfg.Firebase.CredentialsPath)
	if err != nil {
		log.Fatalf("firebase: %v", err)
	}

	bus := changefeed.NewRedisBus(rdb)
	defer bus.Close()

	projectRepo := projrepo.NewProjectRepository(db)
	lotRepo := lotrepo.NewLotRepository(db)
	profileRepo := authrepo.NewProfileRepository(db)

	cache := catalog.New(catalog.Fetcher(projectRepo, lotRepo), catalog.Options{})
	go cache.Run(ctx)

	listener := changefeed.NewListener(bus, cache)
	if err := listener.Start(ctx); err != nil {
		log.Fatalf("changefeed: %v", err)
	}
	defer listener.Stop()

	admin := authservice.NewAdminChecker(profileRepo)
	lots := lotservice.NewLotService(lotRepo, admin, cache, bus, cache)
	projects := projservice.NewProjectService(projectRepo, admin, bus, cache)

	scheduler := resync.NewScheduler(cache)
	scheduler.Start()
	defer scheduler.Stop()

	router := bootstrap.BuildRouter(bootstrap.RouterDeps{
		ServiceName: "lotmap-backend",
		Version:     cfg.App.Version,
		DB:          db,
		AuthClient:  authClient,
		Cache:       cache,
		Bus:         bus,
		Lots:        lots,
		Projects:    projects,
	})

	srv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: router,
	}

	go func() {
		log.Printf("listening on :%s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown: %v", err)
	}
}
