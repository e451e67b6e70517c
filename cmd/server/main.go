/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the sales tracker server. Handles configuration,
  store selection, and graceful shutdown.

STARTUP SEQUENCE:
  1. Parse command-line flags
  2. Open the storage backend (JSON documents or SQLite)
  3. Create API handler over the three repositories
  4. Configure HTTP router
  5. Start server with graceful shutdown

COMMAND-LINE FLAGS:
  -port    HTTP server port (default: 8080)
  -data    Directory for the JSON documents (default: ./data)
  -db      SQLite database path; when set, used INSTEAD of the JSON
           documents. Use ":memory:" for an in-memory database.

STORAGE:
  The JSON backend keeps one pretty-printed document per entity type
  (people.json, products.json, orders.json), auto-created empty on first
  run. The SQLite backend keeps one table per entity type in a single file.

EXAMPLES:
  # JSON documents under ./data
  ./server

  # SQLite file
  ./server -db="./data/sales.db"

SEE ALSO:
  - api/server.go: Router configuration
  - store/jsonstore, store/sqlite: Backends
*/
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/warp/sales-engine/api"
	"github.com/warp/sales-engine/sales"
	"github.com/warp/sales-engine/store/jsonstore"
	"github.com/warp/sales-engine/store/sqlite"
)

func main() {
	port := flag.Int("port", 8080, "HTTP server port")
	dataDir := flag.String("data", "./data", "directory for the JSON documents")
	dbPath := flag.String("db", "", "SQLite database path (overrides -data)")
	flag.Parse()

	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})

	var (
		people   sales.Repository[sales.Person]
		products sales.Repository[sales.Product]
		orders   sales.Repository[sales.Order]
	)

	if *dbPath != "" {
		db, err := sqlite.New(*dbPath)
		if err != nil {
			log.WithError(err).Fatal("failed to open database")
		}
		defer db.Close()
		people = sqlite.NewCollection[sales.Person](db, "people")
		products = sqlite.NewCollection[sales.Product](db, "products")
		orders = sqlite.NewCollection[sales.Order](db, "orders")
		log.WithField("db", *dbPath).Info("using sqlite backend")
	} else {
		var err error
		if people, err = jsonstore.Open[sales.Person](filepath.Join(*dataDir, "people.json")); err != nil {
			log.WithError(err).Fatal("failed to open people store")
		}
		if products, err = jsonstore.Open[sales.Product](filepath.Join(*dataDir, "products.json")); err != nil {
			log.WithError(err).Fatal("failed to open products store")
		}
		if orders, err = jsonstore.Open[sales.Order](filepath.Join(*dataDir, "orders.json")); err != nil {
			log.WithError(err).Fatal("failed to open orders store")
		}
		log.WithField("dir", *dataDir).Info("using JSON document backend")
	}

	handler := api.NewHandler(people, products, orders)
	router := api.NewRouter(handler)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", *port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.WithField("addr", server.Addr).Info("server starting")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Fatal("server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.WithError(err).Fatal("server forced to shutdown")
	}

	log.Info("server stopped")
}
