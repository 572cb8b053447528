package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/stake-plus/groupgov/src/api"
	"github.com/stake-plus/groupgov/src/bot"
	"github.com/stake-plus/groupgov/src/config"
	"github.com/stake-plus/groupgov/src/data"
	"github.com/stake-plus/groupgov/src/governance"
	"github.com/stake-plus/groupgov/src/moderation"
)

const sweepInterval = time.Hour

func main() {
	mysqlDSN := os.Getenv("MYSQL_DSN")
	if mysqlDSN == "" {
		mysqlDSN = "groupgov:groupgov@tcp(127.0.0.1:3306)/groupgov"
	}
	db := data.MustMySQL(mysqlDSN)

	if err := data.Migrate(db); err != nil {
		log.Fatalf("migrate: %v", err)
	}

	cfg := config.Load(db)
	rdb := data.MustRedis(cfg.RedisURL)

	store := governance.NewSQLStore(db)
	executor := moderation.NewExecutor(
		moderation.NewSettings(db),
		moderation.NewBlacklist(db),
		moderation.NewFeedback(db),
	)

	b, err := bot.New(bot.Config{
		Token:    cfg.Token,
		DB:       db,
		Redis:    rdb,
		Store:    store,
		Executor: executor,
		Events:   data.NewEvents(rdb),
	})
	if err != nil {
		log.Fatalf("bot: %v", err)
	}
	if err := b.Start(); err != nil {
		log.Fatalf("bot start: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())

	sweeper := governance.NewScheduler(store, b.Notifier(), sweepInterval)
	go sweeper.Run(ctx)

	router := api.New(cfg, db, rdb, b.Engine(), b.Roster())
	httpSrv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	go func() {
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("http: %v", err)
		}
	}()

	log.Printf("groupgov listening on %s", cfg.Port)

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig

	cancel()
	shutCtx, cancelShut := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShut()
	_ = httpSrv.Shutdown(shutCtx)
	b.Stop()
}
