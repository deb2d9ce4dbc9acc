package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"algoprep/internal/api"
	"algoprep/internal/app/service"
	"algoprep/internal/app/worker"
	"algoprep/internal/common/security"
	"algoprep/internal/domain/repository"
	"algoprep/internal/judge"
	"algoprep/internal/platform/config"
	"algoprep/internal/platform/database"
	"algoprep/internal/platform/queue"
)

func main() {
	config.Load()
	cfg := config.AppConfig
	security.InitJWT()

	database.Connect()
	defer database.Close()

	migrateCtx, migrateCancel := context.WithTimeout(context.Background(), 30*time.Second)
	if err := database.Migrate(migrateCtx, database.DB); err != nil {
		migrateCancel()
		log.Fatalf("Could not apply migrations: %v", err)
	}
	migrateCancel()

	queue.ConnectRedis()
	defer queue.CloseRedis()

	if cfg.JudgeAPIKey == "" {
		log.Println("WARN: RAPIDAPI_KEY is not set; code runs will report a missing credential.")
	}

	// Repositories
	userRepo := repository.NewPgUserRepository(database.DB)
	categoryRepo := repository.NewPgCategoryRepository(database.DB)
	problemRepo := repository.NewPgProblemRepository(database.DB)
	solvedRepo := repository.NewPgSolvedRepository(database.DB)
	runStore := repository.NewRedisRunStore(queue.RDB, cfg.RunResultTTL)

	// Judge and run queue
	judgeClient := judge.NewClient(cfg.JudgeAPIURL, cfg.JudgeAPIHost, cfg.JudgeAPIKey, cfg.JudgeTimeout)
	runQueue := queue.NewJobQueue(queue.RDB, cfg.RunQueueName)
	runLock := queue.NewLock(queue.RDB, cfg.RunLockKey, time.Duration(cfg.RunLockTTLSeconds)*time.Second)

	services := api.Services{
		Auth:     service.NewAuthService(userRepo),
		Category: service.NewCategoryService(categoryRepo),
		Problem:  service.NewProblemService(problemRepo, categoryRepo, solvedRepo),
		Solved:   service.NewSolvedService(solvedRepo, problemRepo),
		Run:      service.NewRunService(judgeClient, runStore, runQueue),
	}

	workerCtx, workerCancel := context.WithCancel(context.Background())
	defer workerCancel()
	workerDone := make(chan struct{})
	if cfg.RunEmbeddedWorker {
		executionWorker := worker.NewExecutionWorker(runQueue, runLock, runStore, judgeClient)
		go func() {
			executionWorker.Start(workerCtx)
			close(workerDone)
		}()
	} else {
		log.Println("INFO: Embedded worker disabled; run cmd/worker to process async runs.")
		close(workerDone)
	}

	server := &http.Server{
		Addr:         ":" + cfg.APIPort,
		Handler:      api.NewRouter(services),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: cfg.JudgeTimeout + 15*time.Second,
		IdleTimeout:  120 * time.Second,
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go func() {
		log.Printf("INFO: Server starting on port %s", cfg.APIPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Could not listen on %s: %v\n", cfg.APIPort, err)
		}
	}()

	<-stop

	log.Println("INFO: Shutting down server...")
	workerCancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("ERROR: Server shutdown failed: %v", err)
	}
	select {
	case <-workerDone:
	case <-shutdownCtx.Done():
		log.Println("WARN: Execution worker did not stop in time.")
	}

	log.Println("INFO: Server and worker stopped gracefully.")
}
