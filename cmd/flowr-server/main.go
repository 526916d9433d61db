// Package main provides a minimal HTTP server exposing rule graph and flow
// visualizations plus debug endpoints.
package main

import (
	"context"
	"encoding/json"
	"expvar"
	"fmt"
	"log"
	"net/http"
	_ "net/http/pprof" // register /debug/pprof on the default mux
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"

	flowrepo "github.com/cltrudeau/flowr/internal/adapters/repository/flows"
	"github.com/cltrudeau/flowr/internal/adapters/repository/memory"
	"github.com/cltrudeau/flowr/internal/adapters/repository/postgres"
	"github.com/cltrudeau/flowr/internal/adapters/repository/sqlite"
	"github.com/cltrudeau/flowr/internal/app/loader"
	"github.com/cltrudeau/flowr/internal/app/services"
	"github.com/cltrudeau/flowr/internal/core/rule"
	"github.com/cltrudeau/flowr/internal/core/snapshot"
	"github.com/cltrudeau/flowr/internal/infrastructure/config"
	"github.com/cltrudeau/flowr/pkg/export"
	"github.com/cltrudeau/flowr/pkg/serialization"
)

type server struct {
	sets   *rule.Sets
	flows  *flowrepo.InMemoryFlowRepository
	states *services.StateService
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	ctx := context.Background()
	store, cleanup, err := openStore(ctx, cfg)
	if err != nil {
		log.Fatalf("store error: %v", err)
	}
	defer cleanup()

	srv := &server{
		sets:   rule.NewSets(),
		flows:  flowrepo.NewInMemoryFlowRepository(),
		states: services.NewStateService(store),
	}
	for _, path := range cfg.RuleSetPaths {
		rs, err := loader.RuleSetFromFile(path, srv.sets, nil)
		if err != nil {
			log.Fatalf("load rule set %s: %v", path, err)
		}
		log.Printf("loaded rule set %q from %s", rs.Name(), path)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		_, _ = fmt.Fprintln(w, "flowr server is running. See /healthz, /rulesets, /metrics, /debug/vars")
	})
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = fmt.Fprint(w, "ok")
	})

	// Prometheus-compatible metrics endpoint (no external deps)
	mux.HandleFunc("/metrics", promMetricsHandler)
	mux.Handle("/debug/vars", expvar.Handler())

	mux.HandleFunc("/rulesets", srv.listRuleSets)
	mux.HandleFunc("/rulesets/", srv.ruleSetGraph)
	mux.HandleFunc("/flows/", srv.flowGraph)

	// Workload endpoint to generate traversal metrics
	mux.HandleFunc("/workload/traverse", srv.traverseWorkload)

	log.Printf("Starting flowr server on %s (store=%s)", cfg.Addr, cfg.Store)
	if err := http.ListenAndServe(cfg.Addr, mux); err != nil {
		log.Fatalf("server error: %v", err)
	}
}

// openStore wires the snapshot store the configuration selects. The returned
// cleanup releases any underlying connections.
func openStore(ctx context.Context, cfg *config.Config) (snapshot.Store, func(), error) {
	switch cfg.Store {
	case config.StorePostgres:
		pool, err := pgxpool.New(ctx, cfg.PostgresDSN)
		if err != nil {
			return nil, nil, fmt.Errorf("connect postgres: %w", err)
		}
		store := postgres.NewSnapshotStore(pool, serialization.Default())
		if err := store.EnsureSchema(ctx); err != nil {
			pool.Close()
			return nil, nil, fmt.Errorf("ensure schema: %w", err)
		}
		return store, pool.Close, nil
	case config.StoreSQLite:
		store, err := sqlite.Open(ctx, cfg.SQLitePath, serialization.Default())
		if err != nil {
			return nil, nil, fmt.Errorf("open sqlite: %w", err)
		}
		return store, func() { _ = store.Close() }, nil
	default:
		return memory.NewSnapshotStore(nil), func() {}, nil
	}
}

func (s *server) listRuleSets(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]any{"rulesets": s.sets.Names()})
}

// ruleSetGraph serves GET /rulesets/{name}/graph as Cytoscape elements JSON.
func (s *server) ruleSetGraph(w http.ResponseWriter, r *http.Request) {
	name, ok := pathResource(r.URL.Path, "/rulesets/")
	if !ok {
		http.NotFound(w, r)
		return
	}
	rs, err := s.sets.Get(name)
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	data, err := export.RuleGraphJSON(rs)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(data)
}

// flowGraph serves GET /flows/{id}/graph as Cytoscape elements JSON.
func (s *server) flowGraph(w http.ResponseWriter, r *http.Request) {
	id, ok := pathResource(r.URL.Path, "/flows/")
	if !ok {
		http.NotFound(w, r)
		return
	}
	f, err := s.flows.Get(r.Context(), id)
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	data, err := export.FlowJSON(f)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(data)
}

// pathResource extracts {name} from prefix + "{name}/graph".
func pathResource(path, prefix string) (string, bool) {
	rest := strings.TrimPrefix(path, prefix)
	name, tail, found := strings.Cut(rest, "/")
	if !found || tail != "graph" || name == "" {
		return "", false
	}
	return name, true
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("write response: %v", err)
	}
}
