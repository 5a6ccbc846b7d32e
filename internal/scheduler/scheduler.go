package scheduler

import (
	"context"
	"log"
	"sync"

	"hookrelay/internal/db"
	"hookrelay/internal/taskqueue"

	"github.com/robfig/cron/v3"
)

// Scheduler manages cron triggers for scheduled bots
type Scheduler struct {
	cron      *cron.Cron
	db        *db.DB
	jobMap    map[int64]cron.EntryID // Maps bot ID to cron entry ID
	jobMapMux sync.RWMutex           // Protects jobMap
}

// NewScheduler creates a scheduler
func NewScheduler(dbConn *db.DB) *Scheduler {
	return &Scheduler{
		cron:   cron.New(),
		db:     dbConn,
		jobMap: make(map[int64]cron.EntryID),
	}
}

// Start starts the scheduler
func (s *Scheduler) Start() {
	s.cron.Start()
	log.Println("SCHEDULER: Cron scheduler started")
}

// Stop stops the scheduler and waits for running jobs
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	log.Println("SCHEDULER: Cron scheduler stopped")
}

// LoadBots loads all scheduled bots from the database and registers their
// cron jobs. Called during startup.
func (s *Scheduler) LoadBots() error {
	bots, err := s.db.GetAllScheduledBots(context.Background())
	if err != nil {
		log.Printf("SCHEDULER: Failed to load scheduled bots: %v", err)
		return err
	}

	log.Printf("SCHEDULER: Loading %d scheduled bots from database", len(bots))

	for _, bot := range bots {
		if err := s.AddOrUpdateBot(bot.ID, bot.CronExpression, bot.Enabled); err != nil {
			log.Printf("SCHEDULER: Failed to schedule bot %d with cron '%s': %v", bot.ID, bot.CronExpression, err)
		}
	}

	s.jobMapMux.RLock()
	defer s.jobMapMux.RUnlock()
	log.Printf("SCHEDULER: Successfully loaded %d enabled scheduled bots", len(s.jobMap))
	return nil
}

// AddOrUpdateBot (re)registers one bot's cron job; a disabled bot is only
// removed. Called by the CRUD handlers after a write.
func (s *Scheduler) AddOrUpdateBot(botID int64, cronExpression string, enabled bool) error {
	s.RemoveBot(botID)

	if !enabled {
		log.Printf("SCHEDULER: Bot %d is disabled, not scheduling", botID)
		return nil
	}

	entryID, err := s.cron.AddFunc(cronExpression, func() {
		log.Printf("SCHEDULER: Cron trigger for scheduled bot %d", botID)
		if err := taskqueue.EnqueueBotRun(botID); err != nil {
			log.Printf("SCHEDULER: Failed to enqueue run for bot %d: %v", botID, err)
		}
	})
	if err != nil {
		return err
	}

	s.jobMapMux.Lock()
	s.jobMap[botID] = entryID
	s.jobMapMux.Unlock()

	log.Printf("SCHEDULER: Scheduled bot %d with cron '%s' (entry ID: %d)", botID, cronExpression, entryID)
	return nil
}

// RemoveBot unregisters a bot's cron job if present.
func (s *Scheduler) RemoveBot(botID int64) {
	s.jobMapMux.Lock()
	defer s.jobMapMux.Unlock()

	if entryID, exists := s.jobMap[botID]; exists {
		s.cron.Remove(entryID)
		delete(s.jobMap, botID)
		log.Printf("SCHEDULER: Removed scheduled bot %d (entry ID: %d)", botID, entryID)
	}
}

// GetScheduledJobCount returns the number of currently scheduled jobs
func (s *Scheduler) GetScheduledJobCount() int {
	s.jobMapMux.RLock()
	defer s.jobMapMux.RUnlock()
	return len(s.jobMap)
}
