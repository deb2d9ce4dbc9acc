package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"algoprep/internal/app/worker"
	"algoprep/internal/domain/repository"
	"algoprep/internal/judge"
	"algoprep/internal/platform/config"
	"algoprep/internal/platform/queue"
)

func main() {
	log.Println("INFO: Worker service starting...")
	config.Load()
	cfg := config.AppConfig

	queue.ConnectRedis()
	defer queue.CloseRedis()

	if cfg.JudgeAPIKey == "" {
		log.Println("WARN: RAPIDAPI_KEY is not set; every job will complete with a missing credential.")
	}

	judgeClient := judge.NewClient(cfg.JudgeAPIURL, cfg.JudgeAPIHost, cfg.JudgeAPIKey, cfg.JudgeTimeout)
	executionWorker := worker.NewExecutionWorker(
		queue.NewJobQueue(queue.RDB, cfg.RunQueueName),
		queue.NewLock(queue.RDB, cfg.RunLockKey, time.Duration(cfg.RunLockTTLSeconds)*time.Second),
		repository.NewRedisRunStore(queue.RDB, cfg.RunResultTTL),
		judgeClient,
	)

	ctx, cancel := context.WithCancel(context.Background())
	var wg sync.WaitGroup

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)

	wg.Add(1)
	go func() {
		defer wg.Done()
		executionWorker.Start(ctx)
	}()

	<-sigs
	log.Println("INFO: Shutdown signal received.")
	cancel()

	wg.Wait()
	log.Println("INFO: Worker exited cleanly.")
}
