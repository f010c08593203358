package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/linyuhsin/bookshop/internal/config"
	"github.com/linyuhsin/bookshop/internal/es"
	"github.com/linyuhsin/bookshop/internal/handlers"
	"github.com/linyuhsin/bookshop/internal/logging"
	"github.com/linyuhsin/bookshop/internal/mykafka"
	httpserver "github.com/linyuhsin/bookshop/internal/transport/http"
)

func main() {
	configuration, err := config.LoadConfig()
	if err != nil {
		log.Fatal(err)
	}

	logger := logging.New(configuration.LOG_LEVEL)
	slog.SetDefault(logger)

	db, err := config.InitDB(configuration)
	if err != nil {
		log.Fatalf("db init error: %v", err)
	}

	var prod *mykafka.Producer
	if configuration.KAFKA_ADDRESS != "" {
		prod, err = mykafka.NewProducer([]string{configuration.KAFKA_ADDRESS})
		if err != nil {
			log.Fatal(err)
		}
	}

	e := echo.New()
	e.Pre(middleware.RemoveTrailingSlash())
	e.Use(middleware.Recover(), middleware.RequestID(), middleware.CORS())
	e.Use(logging.RequestLogger(logger))

	deps := httpserver.Deps{
		DB: db,
		AuthHandler: &handlers.AuthHandler{
			DB:            db,
			JWTSecret:     []byte(configuration.JWT_SECRET),
			RefreshSecret: []byte(configuration.REFRESH_SECRET),
			Producer:      prod,
		},
		UserHandler:     &handlers.UserHandler{DB: db, Producer: prod},
		BookHandler:     &handlers.BookHandler{DB: db, Producer: prod},
		OrderHandler:    &handlers.OrderHandler{DB: db, Producer: prod},
		CartHandler:     &handlers.CartHandler{DB: db, Producer: prod},
		CouponHandler:   &handlers.CouponHandler{DB: db},
		CategoryHandler: &handlers.CategoryHandler{DB: db},
		VendorHandler:   &handlers.VendorHandler{DB: db},
		AdminHandler:    &handlers.AdminHandler{DB: db},
		RevenueHandler:  &handlers.RevenueHandler{DB: db},
	}

	if configuration.ES_URL != "" {
		esClient, err := es.NewClient(configuration)
		if err != nil {
			log.Fatal(err)
		}
		deps.SearchHandler = &handlers.SearchHandler{ES: esClient, Index: "book"}
	}

	httpserver.Register(e, &deps)

	srv := &http.Server{
		Addr:         configuration.HTTP_ADDR,
		Handler:      e,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("http server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("server shutdown error: %v", err)
	}

	if sqlDB, err := db.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			log.Printf("db close error: %v", err)
		}
	} else {
		log.Printf("db() error: %v", err)
	}

	if err := prod.Close(); err != nil {
		log.Printf("kafka close error: %v", err)
	}

	log.Println("shutdown complete")
}
