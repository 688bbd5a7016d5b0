package main

import (
	"context"
	"database/sql"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"
	"github.com/robfig/cron/v3"
	"golang.org/x/sync/errgroup"

	"github.com/crewplane/crewplane/pkg/access"
	"github.com/crewplane/crewplane/pkg/audit"
)

var (
	dbURL          = flag.String("db-url", getEnv("DATABASE_URL", "postgres://localhost/crewplane?sslmode=disable"), "PostgreSQL connection URL")
	sweepSchedule  = flag.String("sweep-schedule", "30 2 * * *", "Cron schedule for the nightly sweep (default: 02:30 UTC)")
	auditRetention = flag.Duration("audit-retention", 90*24*time.Hour, "How long audit events are kept")
	runOnce        = flag.Bool("run-once", false, "Run the sweep once and exit (for testing)")
)

func main() {
	flag.Parse()

	db, err := sql.Open("postgres", *dbURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		log.Fatalf("Failed to ping database: %v", err)
	}

	selector := access.NewSelector(db)

	if *runOnce {
		if err := runSweep(context.Background(), db, selector, *auditRetention); err != nil {
			log.Fatalf("Sweep failed: %v", err)
		}
		log.Println("Sweep completed successfully")
		return
	}

	c := cron.New()
	_, err = c.AddFunc(*sweepSchedule, func() {
		log.Println("Starting nightly sweep")
		if err := runSweep(context.Background(), db, selector, *auditRetention); err != nil {
			log.Printf("Nightly sweep failed: %v", err)
		} else {
			log.Println("Nightly sweep completed successfully")
		}
	})
	if err != nil {
		log.Fatalf("Failed to schedule sweep: %v", err)
	}

	c.Start()
	log.Println("Crewplane janitor started")
	log.Printf("Sweep schedule: %s", *sweepSchedule)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	<-sigChan
	log.Println("Shutting down gracefully...")

	ctx := c.Stop()
	<-ctx.Done()

	log.Println("Janitor stopped")
}

// runSweep runs the independent cleanup jobs concurrently: selections
// pointing at contexts with no remaining grants, and audit events past
// the retention window.
func runSweep(ctx context.Context, db *sql.DB, selector *access.Selector, retention time.Duration) error {
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		cleared, err := selector.ClearStale(ctx)
		if err != nil {
			return err
		}
		log.Printf("✓ Cleared %d stale context selections", cleared)
		return nil
	})

	g.Go(func() error {
		pruned, err := audit.Prune(ctx, db, retention)
		if err != nil {
			return err
		}
		log.Printf("✓ Pruned %d expired audit events", pruned)
		return nil
	})

	return g.Wait()
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
