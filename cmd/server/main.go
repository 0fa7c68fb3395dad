package main // Entry point package

import (
	"log"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/smarthostel/backend/internal/config"
	"github.com/smarthostel/backend/internal/database"
	"github.com/smarthostel/backend/internal/handler"
	"github.com/smarthostel/backend/internal/mail"
	appmw "github.com/smarthostel/backend/internal/middleware"
	"github.com/smarthostel/backend/internal/queue"
	"github.com/smarthostel/backend/internal/repository"
	"github.com/smarthostel/backend/internal/router"
	"github.com/smarthostel/backend/internal/service"
	"github.com/smarthostel/backend/internal/session"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()
	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("mysql connect: %v", err)
	}
	defer db.Close()

	rdb := config.NewRedisClient()
	if rdb == nil {
		// Sessions live in Redis; without it no one can log in.
		log.Fatal("redis connect failed")
	}

	users := repository.NewUserRepo(db)
	sessions := session.NewStore(rdb)
	auth := service.NewAuthService(cfg, users, sessions, service.NewAMQPMailPublisher())

	// Mail worker: consumes activation events and delivers them. Runs for
	// the life of the process, reconnecting on broker failures.
	mailer := mail.NewMailer(cfg.SMTP)
	go func() {
		if err := queue.StartActivationMailConsumer(mailer, cfg.ActivationTTLMin); err != nil {
			log.Printf("mail consumer stopped: %v", err)
		}
	}()

	e := echo.New()
	e.HideBanner = true
	e.HTTPErrorHandler = router.HTTPErrorHandler
	if cfg.Origin != "" {
		e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
			AllowOrigins:     []string{cfg.Origin},
			AllowCredentials: true,
		}))
	}

	router.RegisterRoutes(e)
	limiter := appmw.NewTokenBucket(config.LoadRateLimitConfig(), rdb)
	router.RegisterAuth(e, handler.NewAuthHandler(auth), cfg.AccessSecret, sessions, limiter)

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)

	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
