package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/robfig/cron/v3"

	"github.com/RegioJobs/RegioJobs/internal/pkg/billing"
	"github.com/RegioJobs/RegioJobs/internal/pkg/cache"
	"github.com/RegioJobs/RegioJobs/internal/pkg/database"
	"github.com/RegioJobs/RegioJobs/internal/pkg/env"
	"github.com/RegioJobs/RegioJobs/internal/pkg/jobqueue"
)

var (
	overdueSchedule  = flag.String("overdue-schedule", "0 * * * *", "Cron schedule for the overdue check (default: every hour)")
	reminderSchedule = flag.String("reminder-schedule", "30 8 * * *", "Cron schedule for bulk reminders (default: 08:30)")
	expirySchedule   = flag.String("expiry-schedule", "0 9 * * *", "Cron schedule for expiry warnings (default: 09:00)")
	runOnce          = flag.Bool("once", false, "Run all sweeps once and exit")
)

func main() {
	flag.Parse()

	env.SetupEnvFile()
	database.SetupDatabase()
	cache.SetupCache()

	queue := jobqueue.GetGlobalQueue()
	queue.Start()
	defer queue.Stop()

	svc := billing.NewServiceFromDB(database.GetDB(), queue)

	// Run once mode (for testing or manual catch-up)
	if *runOnce {
		runSweeps(svc)
		return
	}

	// Scheduled mode
	c := cron.New()

	mustSchedule(c, *overdueSchedule, "overdue check", func() {
		res, err := svc.CheckOverdueInvoices(context.Background())
		if err != nil {
			log.Printf("Overdue check failed: %v", err)
			return
		}
		log.Printf("Overdue check: %d invoice(s) marked overdue", res.Updated)
	})

	mustSchedule(c, *reminderSchedule, "bulk reminders", func() {
		res, err := svc.SendBulkReminders(context.Background())
		if err != nil {
			log.Printf("Bulk reminders failed: %v", err)
			return
		}
		log.Printf("Bulk reminders: attempted=%d sent=%d failed=%d", res.Attempted, res.Sent, res.Failed)
	})

	mustSchedule(c, *expirySchedule, "expiry warnings", func() {
		res, err := svc.SendExpiryWarnings(context.Background())
		if err != nil {
			log.Printf("Expiry warnings failed: %v", err)
			return
		}
		log.Printf("Expiry warnings: attempted=%d sent=%d", res.Attempted, res.Sent)
	})

	c.Start()
	log.Println("RegioJobs billing sweeper started")
	log.Printf("Overdue check schedule: %s", *overdueSchedule)
	log.Printf("Bulk reminder schedule: %s", *reminderSchedule)
	log.Printf("Expiry warning schedule: %s", *expirySchedule)

	// Wait for termination signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	<-sigChan
	log.Println("Shutting down gracefully...")

	ctx := c.Stop()
	<-ctx.Done()

	log.Println("Sweeper stopped")
}

func mustSchedule(c *cron.Cron, spec, name string, fn func()) {
	if _, err := c.AddFunc(spec, fn); err != nil {
		log.Fatalf("Invalid schedule for %s (%q): %v", name, spec, err)
	}
}

func runSweeps(svc *billing.Service) {
	ctx := context.Background()

	if res, err := svc.CheckOverdueInvoices(ctx); err != nil {
		log.Printf("Overdue check failed: %v", err)
	} else {
		log.Printf("Overdue check: %d invoice(s) marked overdue", res.Updated)
	}

	if res, err := svc.SendBulkReminders(ctx); err != nil {
		log.Printf("Bulk reminders failed: %v", err)
	} else {
		log.Printf("Bulk reminders: attempted=%d sent=%d failed=%d", res.Attempted, res.Sent, res.Failed)
	}

	if res, err := svc.SendExpiryWarnings(ctx); err != nil {
		log.Printf("Expiry warnings failed: %v", err)
	} else {
		log.Printf("Expiry warnings: attempted=%d sent=%d", res.Attempted, res.Sent)
	}
}
