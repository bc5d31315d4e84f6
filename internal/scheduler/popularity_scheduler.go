package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/robfig/cron/v3"
	"github.com/tagsy/tagsy-backend/internal/app/repository"
	"github.com/tagsy/tagsy-backend/pkg/logger"
)

// PopularityScheduler periodically snapshots per-server tag usage counters
// into redis sorted sets, so adapters can show "popular tags" without a
// full-table scan per request.
type PopularityScheduler struct {
	cron    *cron.Cron
	tagRepo repository.TagRepository
	redis   *redis.Client
}

func NewPopularityScheduler(tagRepo repository.TagRepository, redisClient *redis.Client) *PopularityScheduler {
	return &PopularityScheduler{
		cron:    cron.New(),
		tagRepo: tagRepo,
		redis:   redisClient,
	}
}

// Start schedules the hourly snapshot
func (s *PopularityScheduler) Start() error {
	_, err := s.cron.AddFunc("@hourly", func() {
		if err := s.Snapshot(context.Background()); err != nil {
			logger.Error("Failed to snapshot tag popularity", err)
		}
	})
	if err != nil {
		logger.Error("Failed to add cron job for popularity snapshot", err)
		return err
	}

	s.cron.Start()
	logger.Info("Popularity scheduler started (hourly)")
	return nil
}

// Stop stops the scheduler
func (s *PopularityScheduler) Stop() {
	logger.Info("Stopping popularity scheduler...")
	s.cron.Stop()
}

// Snapshot rebuilds the popular:{server} sorted sets from usage counters
func (s *PopularityScheduler) Snapshot(ctx context.Context) error {
	tags, err := s.tagRepo.FindAllTenants()
	if err != nil {
		return err
	}

	perServer := make(map[string][]redis.Z)
	for _, tag := range tags {
		perServer[tag.ServerID] = append(perServer[tag.ServerID], redis.Z{
			Score:  float64(tag.UsageCount),
			Member: tag.Tag,
		})
	}

	for serverID, members := range perServer {
		key := fmt.Sprintf("popular:%s", serverID)
		pipe := s.redis.TxPipeline()
		pipe.Del(ctx, key)
		pipe.ZAdd(ctx, key, members...)
		pipe.Expire(ctx, key, 2*time.Hour)
		if _, err := pipe.Exec(ctx); err != nil {
			return fmt.Errorf("failed to write popularity snapshot for %s: %w", serverID, err)
		}
	}

	logger.Info("Tag popularity snapshot written", map[string]interface{}{
		"servers": len(perServer),
		"tags":    len(tags),
	})
	return nil
}
