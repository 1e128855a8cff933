package server

import (
	"github.com/nezinomas/maps/internal/artifacts"
	"github.com/nezinomas/maps/internal/auth"
	"github.com/nezinomas/maps/internal/config"
	"github.com/nezinomas/maps/internal/db"
	"github.com/nezinomas/maps/internal/garmin"
	"github.com/nezinomas/maps/internal/mapview"
	"github.com/nezinomas/maps/internal/track"
	"github.com/nezinomas/maps/internal/trip"
	"github.com/nezinomas/maps/internal/wordpress"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/redis/go-redis/v9"
)

type Server struct {
	App   *fiber.App
	Cfg   config.Config
	DB    db.Querier
	Redis *redis.Client

	trips    *trip.Service
	tracks   *track.Repo
	store    *artifacts.Store
	maps     *mapview.Service
	comments *wordpress.Service
}

// Seams for tests: the live server dials Garmin Connect and the
// WordPress blog over HTTP.
var (
	newGarminAPIFn = func(cfg config.Config) garmin.API {
		return garmin.NewClient(cfg.GarminBaseURL, cfg.GarminUser, cfg.GarminPass)
	}
	newBlogFn = func(cfg config.Config) wordpress.Blog {
		return wordpress.NewClient(cfg.BlogURL)
	}
)

func NewServer(cfg config.Config, querier db.Querier, redisClient *redis.Client) *Server {
	app := fiber.New()
	app.Use(recover.New())
	app.Use(logger.New())

	s := &Server{
		App:   app,
		Cfg:   cfg,
		DB:    querier,
		Redis: redisClient,
	}
	s.trips = trip.NewService(querier)
	s.tracks = track.NewRepo(querier)
	s.store = artifacts.NewStore(cfg.MediaRoot)
	s.maps = mapview.NewService(s.tracks, redisClient)
	s.comments = wordpress.NewService(querier, newBlogFn(cfg))

	registerRoutes(s)
	return s
}

func registerRoutes(s *Server) {
	s.App.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	jwtMiddleware := auth.JWTMiddleware(s.Cfg.JWTSecret)

	auth.RegisterRoutes(s.App.Group("/auth"), auth.NewService(s.Cfg.JWTSecret, s.Cfg.AdminUser, s.Cfg.AdminPassHash))
	trip.RegisterRoutes(s.App.Group("/trips"), s.trips, jwtMiddleware)

	s.App.Get("/trips/:slug/map", s.handleMap)
	s.App.Get("/trips/:slug/comments", s.handleListComments)

	s.App.Post("/sync", jwtMiddleware, s.handleSync)
	s.App.Post("/trips/:id/tracks/save", jwtMiddleware, s.handleSaveTracks)
	s.App.Post("/trips/:id/tracks/rewrite", jwtMiddleware, s.handleRewriteTracks)
	s.App.Post("/trips/:id/comments/sync", jwtMiddleware, s.handleSyncComments)
}
