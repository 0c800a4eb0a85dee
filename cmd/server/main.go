package main // Entry point package

import (
	"log"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/greenloop/ewaste-pickup/internal/config"
	"github.com/greenloop/ewaste-pickup/internal/database"
	"github.com/greenloop/ewaste-pickup/internal/handler"
	"github.com/greenloop/ewaste-pickup/internal/repository"
	"github.com/greenloop/ewaste-pickup/internal/router"
)

func main() {
	_ = godotenv.Load() // optional .env for local development

	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	rdb := config.NewRedisClient() // nil disables rate limiting and caching

	users := repository.NewUserRepo(db)
	pickups := repository.NewPickupRepo(db)
	categories := repository.NewCategoryRepo(db)

	e := echo.New()
	e.Use(echomw.Logger())
	e.Use(echomw.Recover())

	router.Register(e, router.Handlers{
		Auth:      handler.NewAuthHandler(cfg, users),
		Pickups:   handler.NewPickupHandler(pickups, users),
		Users:     handler.NewUserHandler(users),
		Analytics: handler.NewAnalyticsHandler(pickups),
		Category:  handler.NewCategoryHandler(categories),
	}, cfg, rdb)

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)

	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
