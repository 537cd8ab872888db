package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/didip/tollbooth/v6"
	"github.com/didip/tollbooth/v6/limiter"
	"github.com/bradfitz/gomemcache/memcache"
	esv7 "github.com/elastic/go-elasticsearch/v7"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	rv8 "github.com/go-redis/redis/v8"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/riandyrn/otelchi"
	"go.uber.org/zap"

	"github.com/taskhive/taskhive-api/cmd/internal"
	internaldomain "github.com/taskhive/taskhive-api/internal"
	"github.com/taskhive/taskhive-api/internal/elasticsearch"
	envvar "github.com/taskhive/taskhive-api/internal/envvar"
	"github.com/taskhive/taskhive-api/internal/kafka"
	"github.com/taskhive/taskhive-api/internal/memcached"
	"github.com/taskhive/taskhive-api/internal/postgresql"
	"github.com/taskhive/taskhive-api/internal/rediscache"
	"github.com/taskhive/taskhive-api/internal/rest"
	"github.com/taskhive/taskhive-api/internal/service"
)

func main() {
	var env, address string

	flag.StringVar(&env, "env", "", "Environment Variables filename")
	flag.StringVar(&address, "address", ":9234", "HTTP Server Address")
	flag.Parse()

	errC, err := run(env, address)
	if err != nil {
		log.Fatalf("Couldn't run: %s", err)
	}

	if err := <-errC; err != nil {
		log.Fatalf("Error while running: %s", err)
	}
}

func run(env, address string) (<-chan error, error) {
	logger, err := zap.NewProduction()
	if err != nil {
		return nil, internaldomain.WrapErrorf(err, internaldomain.ErrorCodeUnknown, "zap.NewProduction")
	}

	if err := envvar.Load(env); err != nil {
		return nil, internaldomain.WrapErrorf(err, internaldomain.ErrorCodeUnknown, "envvar.Load")
	}

	vault, err := internal.NewVaultProvider()
	if err != nil {
		return nil, internaldomain.WrapErrorf(err, internaldomain.ErrorCodeUnknown, "internal.NewVaultProvider")
	}

	conf := envvar.New(vault)

	pool, err := internal.NewPostgreSQL(conf)
	if err != nil {
		return nil, internaldomain.WrapErrorf(err, internaldomain.ErrorCodeUnknown, "internal.NewPostgreSQL")
	}

	es, err := internal.NewElasticSearch(conf)
	if err != nil {
		return nil, internaldomain.WrapErrorf(err, internaldomain.ErrorCodeUnknown, "internal.NewElasticSearch")
	}

	kafkaProducer, err := internal.NewKafkaProducer(conf)
	if err != nil {
		return nil, internaldomain.WrapErrorf(err, internaldomain.ErrorCodeUnknown, "internal.NewKafkaProducer")
	}

	srvConf := serverConfig{
		Address:       address,
		DB:            pool,
		ElasticSearch: es,
		Kafka:         kafkaProducer,
		Logger:        logger,
	}

	// The cache decorating the task repository is picked at startup.
	switch os.Getenv("CACHE_BACKEND") {
	case "redis":
		rdb, err := internal.NewRedis(conf)
		if err != nil {
			return nil, internaldomain.WrapErrorf(err, internaldomain.ErrorCodeUnknown, "internal.NewRedis")
		}

		srvConf.Redis = rdb
	default:
		mc, err := internal.NewMemcached(conf)
		if err != nil {
			return nil, internaldomain.WrapErrorf(err, internaldomain.ErrorCodeUnknown, "internal.NewMemcached")
		}

		srvConf.Memcached = mc
	}

	promExporter, err := internal.NewOTExporter(conf)
	if err != nil {
		return nil, internaldomain.WrapErrorf(err, internaldomain.ErrorCodeUnknown, "internal.NewOTExporter")
	}

	srvConf.Metrics = promExporter

	logging := func(h http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			logger.Info(r.Method,
				zap.Time("time", time.Now()),
				zap.String("url", r.URL.String()),
			)
			h.ServeHTTP(w, r)
		})
	}

	srvConf.Middlewares = []func(next http.Handler) http.Handler{otelchi.Middleware("taskhive-api-server"), logging}

	srv, err := newServer(srvConf)
	if err != nil {
		return nil, fmt.Errorf("newServer %w", err)
	}

	errC := make(chan error, 1)

	ctx, stop := signal.NotifyContext(context.Background(),
		os.Interrupt,
		syscall.SIGTERM,
		syscall.SIGQUIT)

	go func() {
		<-ctx.Done()
		logger.Info("Shutdown signal received")

		ctxTimeout, cancel := context.WithTimeout(context.Background(), 5*time.Second)

		defer func() {
			logger.Sync()
			pool.Close()
			stop()
			cancel()
			close(errC)
		}()

		srv.SetKeepAlivesEnabled(false)

		if err := srv.Shutdown(ctxTimeout); err != nil {
			errC <- err
		}

		logger.Info("Shutdown completed")
	}()

	go func() {
		logger.Info("Listening and serving", zap.String("address", address))
		// "ListenAndServe always returns a non-nil error. After Shutdown or Close, the returned error is
		// ErrServerClosed."
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errC <- err
		}
	}()

	return errC, nil
}

type serverConfig struct {
	Address       string
	DB            *pgxpool.Pool
	ElasticSearch *esv7.Client
	Kafka         *internal.KafkaProducer
	Memcached     *memcache.Client
	Redis         *rv8.Client
	Metrics       http.Handler
	Middlewares   []func(next http.Handler) http.Handler
	Logger        *zap.Logger
}

func newServer(conf serverConfig) (*http.Server, error) {
	router := chi.NewRouter()
	router.Use(render.SetContentType(render.ContentTypeJSON))
	for _, mw := range conf.Middlewares {
		router.Use(mw)
	}

	var taskStore service.TaskRepository = postgresql.NewTask(conf.DB)

	if conf.Redis != nil {
		taskStore = rediscache.NewTask(conf.Redis, taskStore, conf.Logger)
	} else if conf.Memcached != nil {
		taskStore = memcached.NewTask(conf.Memcached, taskStore, conf.Logger)
	}

	search := elasticsearch.NewTask(conf.ElasticSearch)
	msgBroker := kafka.NewTask(conf.Kafka.Producer, conf.Kafka.Topic)

	taskSvc := service.NewTask(conf.Logger, taskStore, search, msgBroker)
	categorySvc := service.NewCategory(conf.Logger, postgresql.NewCategory(conf.DB))
	notificationSvc := service.NewNotification(conf.Logger, postgresql.NewNotification(conf.DB))

	rest.RegisterOpenAPI(router)

	// Everything below requires the requester identity.
	router.Group(func(r chi.Router) {
		r.Use(rest.RequesterID)

		rest.NewTaskHandler(taskSvc).Register(r)
		rest.NewCategoryHandler(categorySvc).Register(r)
		rest.NewNotificationHandler(notificationSvc).Register(r)
	})

	router.Handle("/metrics", conf.Metrics)

	lmt := tollbooth.NewLimiter(3, &limiter.ExpirableOptions{DefaultExpirationTTL: time.Second})
	lmtmw := tollbooth.LimitHandler(lmt, router)

	return &http.Server{
		Handler:           lmtmw,
		Addr:              conf.Address,
		ReadTimeout:       1 * time.Second,
		ReadHeaderTimeout: 1 * time.Second,
		WriteTimeout:      1 * time.Second,
		IdleTimeout:       1 * time.Second,
	}, nil
}
