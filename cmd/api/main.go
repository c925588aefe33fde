package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	httpadp "scholarship-backend/internal/adapter/http"
	mw "scholarship-backend/internal/adapter/middleware"
	"scholarship-backend/internal/adapter/notifier"
	"scholarship-backend/internal/adapter/repository/mysql"
	"scholarship-backend/internal/adapter/storage"
	"scholarship-backend/internal/config"
	"scholarship-backend/internal/domain/notification"
	domainstorage "scholarship-backend/internal/domain/storage"
	"scholarship-backend/internal/infrastructure/cache"
	"scholarship-backend/internal/infrastructure/db"
	"scholarship-backend/internal/jobs"
	"scholarship-backend/internal/usecase/application"
	"scholarship-backend/internal/usecase/cascade"
	"scholarship-backend/internal/usecase/communityservice"
	"scholarship-backend/internal/usecase/document"
	"scholarship-backend/internal/usecase/program"
	"scholarship-backend/internal/usecase/student"
)

func main() {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatal(err)
	}

	gdb, err := db.OpenGorm(cfg.DBDriver, cfg.DSN(), cfg.DBLogLevel)
	if err != nil {
		log.Fatal(err)
	}
	if err := db.Migrate(gdb); err != nil {
		log.Fatal(err)
	}

	rdb, err := cache.OpenRedis(context.Background(), cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		log.Printf("redis unavailable: %v", err)
		rdb = nil
	} else {
		defer rdb.Close()
	}

	var (
		sink  notification.Sink  = notifier.Discard{}
		inbox notification.Inbox = notifier.Discard{}
	)
	if rdb != nil {
		r := notifier.NewRedis(rdb)
		async := notifier.NewAsync(r, cfg.NotifyQueueSize)
		defer async.Close()
		sink, inbox = async, r
	} else {
		log.Println("running without redis: notifications are discarded and idempotency is off")
	}

	store, err := openStore(cfg)
	if err != nil {
		log.Fatal(err)
	}

	u := mysql.NewGormUoW(gdb)
	repos := u.Repos()
	del := cascade.NewDeleter(u, store)
	programs := program.NewUsecase(repos.Programs, del)

	sweeper, err := jobs.NewDeadlineSweeper(cfg.DeadlineSweepSpec, programs)
	if err != nil {
		log.Fatal(err)
	}
	sweeper.Start()
	defer func() { <-sweeper.Stop().Done() }()

	e := echo.New()
	e.HideBanner = true
	e.Validator = httpadp.NewValidator()
	e.Use(middleware.Logger(), middleware.Recover())

	chain := []echo.MiddlewareFunc{mw.ActorMiddleware()}
	if rdb != nil {
		chain = append(chain, mw.IdempotencyMiddleware(rdb, time.Duration(cfg.IdempTTLSecs)*time.Second))
	}
	httpadp.Register(e, httpadp.Handlers{
		Base:     httpadp.NewHandler(inbox),
		Students: httpadp.NewStudentHandler(student.NewUsecase(repos.Students)),
		Programs: httpadp.NewProgramHandler(programs),
		Applications: httpadp.NewApplicationHandler(application.NewUsecase(u, sink, del, application.Options{
			AllowDeferredUpload: cfg.AllowDeferredUpload,
		})),
		Documents: httpadp.NewDocumentHandler(document.NewUsecase(u, store, sink)),
		Service:   httpadp.NewServiceHandler(communityservice.NewUsecase(u, store, sink)),
	}, chain...)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	addr := ":" + cfg.AppPort
	go func() {
		log.Printf("listening on %s", addr)
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal(err)
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown: %v", err)
	}
}

func openStore(cfg *config.Config) (domainstorage.Store, error) {
	if cfg.StorageDriver == config.StorageOSS {
		return storage.NewOSSStore(cfg.OSSEndpoint, cfg.OSSAccessKeyID, cfg.OSSAccessKeySecret, cfg.OSSBucket, "scholarship/")
	}
	return storage.NewLocalStore(cfg.StorageDir)
}
