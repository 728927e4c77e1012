package main

import (
	"log"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/note-vault/internal/config"
	"github.com/iliyamo/note-vault/internal/database"
	"github.com/iliyamo/note-vault/internal/handler"
	"github.com/iliyamo/note-vault/internal/middleware"
	"github.com/iliyamo/note-vault/internal/queue"
	"github.com/iliyamo/note-vault/internal/repository/mysql"
	"github.com/iliyamo/note-vault/internal/router"
	"github.com/iliyamo/note-vault/internal/service"
	"github.com/iliyamo/note-vault/internal/storage"
)

func main() {
	_ = godotenv.Load() // .env is optional; real env wins

	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		log.Fatalf("database: %v", err)
	}
	if err := database.SeedGlobalCategories(db); err != nil {
		log.Fatalf("database: %v", err)
	}

	blobs, err := storage.NewDiskStore(cfg.UploadDir)
	if err != nil {
		log.Fatalf("storage: %v", err)
	}

	users := mysql.NewUserRepo(db)
	tokens := mysql.NewTokenRepo(db)
	notes := mysql.NewNoteRepo(db)
	categories := mysql.NewCategoryRepo(db)
	attachments := mysql.NewAttachmentRepo(db)

	categorySvc := service.NewCategoryService(categories)
	noteSvc := service.NewNoteService(notes, attachments, categorySvc, blobs)
	attachmentSvc := service.NewAttachmentService(attachments, notes, blobs)

	rdb := config.NewRedisClient() // nil when Redis is unreachable; limiter and cache degrade

	e := echo.New()
	e.HideBanner = true

	router.Register(e, router.Handlers{
		Auth:        handler.NewAuthHandler(cfg, users, tokens),
		Notes:       handler.NewNoteHandler(noteSvc),
		Categories:  handler.NewCategoryHandler(categorySvc),
		Attachments: handler.NewAttachmentHandler(attachmentSvc),
	}, cfg.JWTSecret,
		middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb),
		middleware.NewRedisCache(config.LoadCacheConfig(), rdb))

	go func() {
		if err := queue.StartNoteConsumer(); err != nil {
			log.Printf("note-consumer stopped: %v", err)
		}
	}()

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
