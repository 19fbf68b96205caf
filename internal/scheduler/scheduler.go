package scheduler

import (
	"context"
	"log"
	"time"

	"github.com/fortuna/dugout/internal/pipeline"
)

// Config holds scheduler configuration. Hours are in KST, the league's
// clock.
type Config struct {
	DailyScrapeHour   int           // full stat scrape, default 1 (01:00 KST, after the night's games)
	GameSyncInterval  time.Duration // default 10m
	EnableDailyScrape bool
	EnableGameSync    bool
	MaxRetries        int           // per game sync attempt
	RetryDelay        time.Duration
}

// DefaultConfig returns default scheduler configuration.
func DefaultConfig() *Config {
	return &Config{
		DailyScrapeHour:   1,
		GameSyncInterval:  10 * time.Minute,
		EnableDailyScrape: true,
		EnableGameSync:    true,
		MaxRetries:        3,
		RetryDelay:        5 * time.Second,
	}
}

// Scheduler drives the scrape pipelines on the league's rhythm: a full
// stat scrape once a night, and the game result sync on a short interval
// so finished games land quickly.
type Scheduler struct {
	orch     *pipeline.Orchestrator
	gameSync pipeline.Runner
	config   *Config
	location *time.Location
	cancel   context.CancelFunc
}

// New creates a scheduler over the orchestrator. gameSync may be nil to
// disable result polling regardless of config.
func New(orch *pipeline.Orchestrator, gameSync pipeline.Runner, config *Config) *Scheduler {
	if config == nil {
		config = DefaultConfig()
	}

	loc, err := time.LoadLocation("Asia/Seoul")
	if err != nil {
		loc = time.FixedZone("KST", 9*60*60)
	}

	return &Scheduler{
		orch:     orch,
		gameSync: gameSync,
		config:   config,
		location: loc,
	}
}

// Start begins all scheduled tasks and blocks until ctx is cancelled.
func (s *Scheduler) Start(ctx context.Context) {
	log.Printf("Scheduler starting: daily scrape %v (at %02d:00 KST), game sync %v (every %v)",
		s.config.EnableDailyScrape, s.config.DailyScrapeHour,
		s.config.EnableGameSync, s.config.GameSyncInterval)

	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	if s.config.EnableDailyScrape {
		go s.runDailyScrape(ctx)
	}
	if s.config.EnableGameSync && s.gameSync != nil {
		go s.runGameSync(ctx)
	}

	<-ctx.Done()
	log.Println("Scheduler stopping...")
}

// Stop cancels all scheduled tasks.
func (s *Scheduler) Stop() {
	if s.cancel != nil {
		s.cancel()
	}
}

// runDailyScrape sleeps until the configured hour and runs every pipeline.
func (s *Scheduler) runDailyScrape(ctx context.Context) {
	log.Printf("→ Daily scrape scheduled for %02d:00 KST", s.config.DailyScrapeHour)

	for {
		now := time.Now().In(s.location)
		nextRun := time.Date(now.Year(), now.Month(), now.Day(), s.config.DailyScrapeHour, 0, 0, 0, s.location)
		if !now.Before(nextRun) {
			nextRun = nextRun.Add(24 * time.Hour)
		}

		wait := time.Until(nextRun)
		log.Printf("  Next full scrape: %s (in %v)", nextRun.Format("2006-01-02 15:04"), wait.Round(time.Second))

		select {
		case <-ctx.Done():
			log.Println("→ Daily scrape stopped")
			return
		case <-time.After(wait):
			s.orch.RunAll(ctx)
		}
	}
}

// runGameSync polls the schedule page on a fixed interval, retrying
// transient failures within each tick.
func (s *Scheduler) runGameSync(ctx context.Context) {
	log.Printf("→ Game sync started (every %v)", s.config.GameSyncInterval)

	ticker := time.NewTicker(s.config.GameSyncInterval)
	defer ticker.Stop()

	s.syncWithRetry(ctx)

	for {
		select {
		case <-ctx.Done():
			log.Println("→ Game sync stopped")
			return
		case <-ticker.C:
			s.syncWithRetry(ctx)
		}
	}
}

func (s *Scheduler) syncWithRetry(ctx context.Context) {
	for attempt := 1; attempt <= s.config.MaxRetries; attempt++ {
		report := s.gameSync.Run(ctx)
		if report.Success {
			return
		}

		log.Printf("  ⚠️ game sync attempt %d/%d failed: %s", attempt, s.config.MaxRetries, report.Error)
		if attempt < s.config.MaxRetries {
			select {
			case <-ctx.Done():
				return
			case <-time.After(s.config.RetryDelay):
			}
		}
	}
	log.Printf("  ⚠️ game sync gave up after %d attempts", s.config.MaxRetries)
}
