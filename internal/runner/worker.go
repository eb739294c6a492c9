package runner

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/estiacrm/marketintel/internal/platform"
	"github.com/estiacrm/marketintel/internal/scheduler"
	"github.com/estiacrm/marketintel/internal/storage"
	"github.com/estiacrm/marketintel/models"
)

// JobRunner is what the dispatch service needs from a run executor.
type JobRunner interface {
	Run(ctx context.Context, job models.ScrapeJobData) (models.ScrapeJobResult, error)
}

// Service is the dispatch loop: each cycle it loads every tenant config,
// asks the controller which pairs are due, fans the jobs out over a bounded
// pool and feeds each outcome back into the schedule.
type Service struct {
	controller    *scheduler.Controller
	orgs          storage.OrgConfigStore
	runLogs       storage.RunLogStore
	runner        JobRunner
	maxConcurrent int
	log           *zap.Logger
}

func NewService(
	controller *scheduler.Controller,
	orgs storage.OrgConfigStore,
	runLogs storage.RunLogStore,
	jobRunner JobRunner,
	maxConcurrent int,
	log *zap.Logger,
) *Service {
	if maxConcurrent <= 0 {
		maxConcurrent = 4
	}
	return &Service{
		controller:    controller,
		orgs:          orgs,
		runLogs:       runLogs,
		runner:        jobRunner,
		maxConcurrent: maxConcurrent,
		log:           log,
	}
}

// RunCycle performs one scheduling pass. Platforms of the same organization
// run sequentially so the config's failure accounting stays coherent;
// organizations run in parallel up to the pool bound.
func (s *Service) RunCycle(ctx context.Context, now time.Time) error {
	configs, err := s.orgs.List(ctx)
	if err != nil {
		return err
	}

	due, err := s.controller.DueJobs(now, configs, func(org, plat string) (bool, error) {
		return s.runLogs.HasRunning(ctx, org, plat)
	})
	if err != nil {
		return err
	}
	if len(due) == 0 {
		return nil
	}
	s.log.Info("dispatching due scrape jobs", zap.Int("pairs", len(due)))

	byOrg := make(map[string][]string)
	for _, pair := range due {
		byOrg[pair.OrganizationID] = append(byOrg[pair.OrganizationID], pair.Platform)
	}
	cfgByOrg := make(map[string]models.OrgIntelConfig, len(configs))
	for _, cfg := range configs {
		cfgByOrg[cfg.OrganizationID] = cfg
	}

	sem := make(chan struct{}, s.maxConcurrent)
	var wg sync.WaitGroup
	for orgID, platforms := range byOrg {
		cfg, ok := cfgByOrg[orgID]
		if !ok {
			continue
		}
		wg.Add(1)
		go func(cfg models.OrgIntelConfig, platforms []string) {
			defer wg.Done()
			s.runOrg(ctx, sem, cfg, platforms)
		}(cfg, platforms)
	}
	wg.Wait()
	return nil
}

func (s *Service) runOrg(ctx context.Context, sem chan struct{}, cfg models.OrgIntelConfig, platforms []string) {
	updated := cfg
	dirty := false
	for _, plat := range platforms {
		select {
		case sem <- struct{}{}:
		case <-ctx.Done():
			if dirty {
				s.save(updated)
			}
			return
		}
		result, err := s.runner.Run(ctx, models.ScrapeJobData{
			OrganizationID: cfg.OrganizationID,
			Platform:       plat,
			Filters:        cfg.Filters,
			MaxPages:       cfg.MaxPagesPerPlatform,
		})
		<-sem

		switch {
		case errors.Is(err, platform.ErrUnknownPlatform):
			// a misconfigured platform is an operator problem, not a
			// transient crawl failure
			s.log.Error("organization references unknown platform",
				zap.String("organization_id", cfg.OrganizationID),
				zap.String("platform", plat))
			updated = scheduler.MarkError(updated, err.Error())
			s.save(updated)
			return
		case errors.Is(err, storage.ErrAlreadyRunning):
			s.log.Debug("pair already in flight, skipping",
				zap.String("organization_id", cfg.OrganizationID),
				zap.String("platform", plat))
			continue
		case err != nil:
			if len(result.Errors) == 0 {
				result.Errors = []string{err.Error()}
			}
		}
		updated = s.controller.ScheduleNext(updated, result, time.Now())
		dirty = true
	}
	if dirty {
		s.save(updated)
	}
}

func (s *Service) save(cfg models.OrgIntelConfig) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := s.orgs.Save(ctx, cfg); err != nil {
		s.log.Error("could not persist organization schedule",
			zap.String("organization_id", cfg.OrganizationID), zap.Error(err))
	}
}
