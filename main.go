package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"motorent/internal/booking/validation"
	intconfig "motorent/internal/config"
	router "motorent/internal/http"
	"motorent/internal/http/handlers"
	"motorent/internal/services"

	"github.com/gin-gonic/gin"
)

func main() {
	env := intconfig.LoadEnv()
	if env.GinMode != "" {
		gin.SetMode(env.GinMode)
	}

	loc := validation.LoadLocation(env.Timezone)

	db := intconfig.ConnectDB(env)
	defer intconfig.CloseDB()

	if missing := intconfig.MissingTables(context.Background(), db, env.DBDriver); len(missing) > 0 {
		log.Printf("[DB] warning: missing tables %v", missing)
	}

	notifier := services.NewNotifyService(env, loc)
	reservations := services.ReservationService{
		DB:        db,
		Driver:    env.DBDriver,
		Validator: validation.Validator{Location: loc},
		Notifier:  notifier,
		Location:  loc,
	}
	auth := services.NewAuthService(db, env)

	handlers.Configure(handlers.Deps{
		Reservations: reservations,
		Auth:         auth,
		Docs:         services.DocsService{FontPath: env.PDFFontPath, Location: loc},
		Export:       services.ExportService{Location: loc},
		Location:     loc,
	})

	jobs := &services.JobService{
		Reservations: reservations,
		PendingTTL:   env.PendingTTL,
		NoShowGrace:  env.NoShowGrace,
	}
	if err := jobs.Start(env.JobSchedule); err != nil {
		log.Fatalf("[JOB] invalid JOB_SCHEDULE %q: %v", env.JobSchedule, err)
	}

	r := router.NewRouter(router.Options{CORSOrigins: env.CORSAllowedOrigins, Tokens: auth})

	srv := &http.Server{
		Addr:              env.AppAddr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       20 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Printf("Server listening on http://localhost%s (db=%s)", env.AppAddr, env.DBDriver)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("server shutdown failed: %v", err)
	}
	jobs.Stop()
	notifier.Wait()

	log.Println("Server stopped.")
}
