package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/nezinomas/maps/internal/artifacts"
	"github.com/nezinomas/maps/internal/config"
	"github.com/nezinomas/maps/internal/db"
	"github.com/nezinomas/maps/internal/garmin"
	"github.com/nezinomas/maps/internal/mapview"
	"github.com/nezinomas/maps/internal/track"
	"github.com/nezinomas/maps/internal/trip"

	"github.com/redis/go-redis/v9"
)

var mainRunner = realMain

// One-shot sync for a cron slot: fetch new Garmin activities for the
// active trip and reconcile the database with the on-disk artifacts.
func main() {
	os.Exit(mainRunner())
}

func realMain() int {
	cfg := config.Load()

	pg, err := db.ConnectPostgres(cfg)
	if err != nil {
		log.Printf("postgres connection failed: %v", err)
		return 1
	}
	defer pg.Close()

	rdb := db.ConnectRedis(cfg)
	api := garmin.NewClient(cfg.GarminBaseURL, cfg.GarminUser, cfg.GarminPass)

	for _, msg := range runSync(context.Background(), cfg, pg, rdb, api) {
		fmt.Println(msg)
	}
	return 0
}

func runSync(ctx context.Context, cfg config.Config, querier db.Querier, cache *redis.Client, api garmin.API) []string {
	trips := trip.NewService(querier)
	active, err := trips.Active(ctx)
	if err != nil {
		return []string{fmt.Sprintf("Error occurred during loading trip: %v", err)}
	}

	store := artifacts.NewStore(cfg.MediaRoot)
	messages := garmin.NewSyncService(active, api, store).GetData(ctx)
	if active == nil {
		return messages
	}

	repo := track.NewRepo(querier)
	data, err := track.NewSyncData(ctx, repo, *active, store)
	if err != nil {
		return append(messages, fmt.Sprintf("Error occurred during saving tracks: %v", err))
	}
	status, created := track.NewSyncer(repo, store, data).Create(ctx)
	messages = append(messages, status)

	if created > 0 {
		mapview.NewService(repo, cache).Invalidate(ctx, active.ID)
	}
	return messages
}
