package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"sync"
	"syscall"
	"time"

	"github.com/banshee-data/track.report/internal/api"
	"github.com/banshee-data/track.report/internal/db"
	"github.com/banshee-data/track.report/internal/units"
	"github.com/banshee-data/track.report/internal/version"
)

var (
	listen        = flag.String("listen", ":8080", "Listen address")
	dbPath        = flag.String("db", "tracks.db", "Path to the sqlite database")
	displayUnits  = flag.String("units", units.KMPH, "Display units for speeds (mps, mph, kmph, kph)")
	timezone      = flag.String("timezone", units.DefaultTimezone, "IANA timezone for waypoint timestamps")
	migrationsDir = flag.String("migrations", "migrations", "Path to the migrations directory")
)

func main() {
	flag.Parse()

	// "track-report migrate up|down|status" manages the schema and exits.
	if flag.Arg(0) == "migrate" {
		runMigrateCommand(flag.Args()[1:], *dbPath, *migrationsDir)
		return
	}

	if *listen == "" {
		log.Fatal("Listen address is required")
	}
	if !units.IsValid(*displayUnits) {
		log.Fatalf("Invalid units %q: must be one of %s", *displayUnits, units.GetValidUnitsString())
	}

	loc, err := units.LoadTimezone(*timezone)
	if err != nil {
		log.Fatalf("Failed to load timezone %q: %v", *timezone, err)
	}

	database, err := db.NewDB(*dbPath)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.Close()

	var wg sync.WaitGroup
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// HTTP server goroutine
	wg.Add(1)
	go func() {
		defer wg.Done()

		mux := api.NewServer(database, *displayUnits, loc).ServeMux()

		server := &http.Server{
			Addr:    *listen,
			Handler: api.LoggingMiddleware(mux),
		}

		// Start server in a goroutine so it doesn't block
		go func() {
			log.Printf("track.report %s (%s) listening on %s (units=%s, tz=%s)",
				version.Version, version.GitSHA, *listen, *displayUnits, loc)
			if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Fatalf("failed to start server: %v", err)
			}
		}()

		// Wait for context cancellation to shut down server
		<-ctx.Done()
		log.Println("shutting down HTTP server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Printf("HTTP server shutdown error: %v", err)
		}

		log.Printf("HTTP server routine stopped")
	}()

	wg.Wait()
	log.Printf("Graceful shutdown complete")
}

// runMigrateCommand handles the 'migrate' subcommand dispatching.
func runMigrateCommand(args []string, dbPath, migrationsDir string) {
	if len(args) < 1 {
		log.Println("Usage: track-report migrate <up|down|status|force <version>>")
		os.Exit(1)
	}

	// Open database connection without running schema initialization
	// (migrations will manage the schema)
	database, err := db.OpenDB(dbPath)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.Close()

	switch args[0] {
	case "up":
		log.Printf("Running migrations...")
		if err := database.MigrateUp(migrationsDir); err != nil {
			log.Fatalf("Migration up failed: %v", err)
		}
		log.Println("All migrations applied successfully")

	case "down":
		log.Printf("Rolling back one migration...")
		if err := database.MigrateDown(migrationsDir); err != nil {
			log.Fatalf("Migration down failed: %v", err)
		}
		log.Println("Migration rolled back successfully")

	case "status":
		version, dirty, err := database.MigrateVersion(migrationsDir)
		if err != nil {
			log.Fatalf("Failed to get migration status: %v", err)
		}
		log.Printf("Current version: %d (dirty: %v)", version, dirty)

	case "force":
		if len(args) < 2 {
			log.Fatal("Usage: track-report migrate force <version>")
		}
		v, err := strconv.Atoi(args[1])
		if err != nil {
			log.Fatalf("Invalid version %q: %v", args[1], err)
		}
		if err := database.MigrateForce(migrationsDir, v); err != nil {
			log.Fatalf("Migration force failed: %v", err)
		}
		log.Printf("Forced migration version to %d", v)

	default:
		log.Fatalf("Unknown migrate action: %s", args[0])
	}
}
