// Package scheduler runs periodic maintenance jobs for the bridge.
package scheduler

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/mrlokans/kobobridge/internal/database"
)

// CleanupScheduler periodically prunes sync records whose device was
// deleted, keeping the sync_records table from accumulating dead rows.
type CleanupScheduler struct {
	db       *database.Database
	schedule string

	cron      *cron.Cron
	entryID   cron.EntryID
	mu        sync.RWMutex
	isRunning bool
	isWorking bool
}

// NewCleanupScheduler creates a new scheduler instance. schedule is a
// standard five-field cron expression.
func NewCleanupScheduler(db *database.Database, schedule string) *CleanupScheduler {
	return &CleanupScheduler{
		db:       db,
		schedule: schedule,
		cron:     cron.New(cron.WithParser(cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow))),
	}
}

// Start begins the scheduler.
func (s *CleanupScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return nil
	}

	entryID, err := s.cron.AddFunc(s.schedule, func() {
		s.runCleanup()
	})
	if err != nil {
		return fmt.Errorf("failed to schedule cleanup job: %w", err)
	}
	s.entryID = entryID

	s.cron.Start()
	s.isRunning = true

	log.Printf("Cleanup scheduler: started with schedule '%s'", s.schedule)

	go func() {
		<-ctx.Done()
		s.Stop()
	}()

	return nil
}

// Stop gracefully stops the scheduler.
func (s *CleanupScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning {
		return
	}

	// Stop accepting new jobs and wait for running jobs to complete
	ctx := s.cron.Stop()
	<-ctx.Done()

	s.isRunning = false

	log.Printf("Cleanup scheduler: stopped")
}

// RunNow triggers an immediate cleanup pass.
func (s *CleanupScheduler) RunNow() {
	go s.runCleanup()
}

// IsRunning returns whether the scheduler is active.
func (s *CleanupScheduler) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// GetNextRunTime returns when the next cleanup will occur.
func (s *CleanupScheduler) GetNextRunTime() *time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.isRunning {
		return nil
	}

	for _, entry := range s.cron.Entries() {
		if entry.ID == s.entryID {
			t := entry.Next
			return &t
		}
	}
	return nil
}

func (s *CleanupScheduler) runCleanup() {
	s.mu.Lock()
	if s.isWorking {
		s.mu.Unlock()
		log.Printf("Cleanup: skipped (already running)")
		return
	}
	s.isWorking = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.isWorking = false
		s.mu.Unlock()
	}()

	startTime := time.Now()
	removed, err := s.db.DeleteOrphanedSyncRecords()
	if err != nil {
		log.Printf("Cleanup: failed to prune orphaned sync records: %v", err)
		return
	}

	log.Printf("Cleanup: pruned %d orphaned sync records in %v", removed, time.Since(startTime).Round(time.Millisecond))
}
