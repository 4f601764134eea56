// Command surveyd serves the survey archive over HTTP. Uploads are parsed,
// stored in SQLite, and exposed as JSON plus rendered sketch pages.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/speleo-data/cavetopo/internal/api"
	"github.com/speleo-data/cavetopo/internal/surveydb"
	"github.com/speleo-data/cavetopo/internal/timeutil"
	"github.com/speleo-data/cavetopo/internal/topo"
	"github.com/speleo-data/cavetopo/internal/version"
)

var (
	listen      = flag.String("listen", ":8080", "HTTP listen address")
	dbFile      = flag.String("db", "surveys.db", "Path to the SQLite archive file")
	units       = flag.String("units", topo.Meters, "Default distance units in responses (m or ft)")
	showVersion = flag.Bool("version", false, "Print version and exit")
)

func main() {
	flag.Parse()

	if *showVersion {
		fmt.Printf("surveyd %s (%s, built %s)\n", version.Version, version.GitSHA, version.BuildTime)
		return
	}

	if *listen == "" {
		log.Fatal("HTTP listen address is required")
	}
	if !topo.IsValidUnit(*units) {
		log.Fatalf("invalid units %q (valid: m, ft)", *units)
	}

	db, err := surveydb.Open(*dbFile)
	if err != nil {
		log.Fatalf("Failed to open survey archive: %v", err)
	}
	defer db.Close()

	if err := db.MigrateUp(); err != nil {
		log.Fatalf("Failed to migrate survey archive: %v", err)
	}

	server := api.NewServer(db, *units, timeutil.RealClock{})

	httpServer := &http.Server{
		Addr:    *listen,
		Handler: server.Handler(),
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		log.Printf("surveyd %s listening on %s (archive %s)", version.Version, *listen, *dbFile)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("HTTP server error: %v", err)
		}
	}()

	<-ctx.Done()
	log.Print("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("HTTP shutdown error: %v", err)
	}
}
