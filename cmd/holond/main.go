// Copyright (C) 2019-2026, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Command holond runs one connector: the process that binds an
// operator's agent to the swarm, exposing the local JSON-RPC surface
// of spec §6 and participating in board formation, deliberation,
// voting and execution over the configured transport.
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/luxfi/holon/internal/board"
	"github.com/luxfi/holon/internal/config"
	"github.com/luxfi/holon/internal/crdt"
	"github.com/luxfi/holon/internal/health"
	"github.com/luxfi/holon/internal/identity"
	"github.com/luxfi/holon/internal/keystore"
	"github.com/luxfi/holon/internal/metrics"
	"github.com/luxfi/holon/internal/rpc"
	"github.com/luxfi/holon/internal/store"
	"github.com/luxfi/holon/internal/swarmlog"
	"github.com/luxfi/holon/internal/transport"
)

func main() {
	var (
		configPath = flag.String("config", "", "path to connector YAML config")
		keyPath    = flag.String("key", "holon.key", "path to the agent's Ed25519 seed file")
		dataDir    = flag.String("data-dir", "holon-data", "content store data directory")
		rpcSocket  = flag.String("rpc-socket", "holon.sock", "unix socket path for the JSON-RPC surface")
		natsURL    = flag.String("nats-url", "", "NATS server URL; empty runs an in-process broker")
		metricsAddr = flag.String("metrics-addr", ":9090", "address to serve /metrics on")
		hardened   = flag.Bool("hardened", true, "require signed RPC requests")
	)
	flag.Parse()

	log := swarmlog.New("holond")

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal("failed loading config", swarmlog.Err(err))
	}

	kp, err := loadOrCreateKeypair(*keyPath, log)
	if err != nil {
		log.Fatal("failed loading agent keypair", swarmlog.Err(err))
	}
	did, err := kp.DID()
	if err != nil {
		log.Fatal("failed deriving DID", swarmlog.Err(err))
	}
	log.Info("agent identity ready", swarmlog.Stringer("did", did))

	if err := os.MkdirAll(*dataDir, 0o700); err != nil {
		log.Fatal("failed creating data directory", swarmlog.Err(err))
	}
	backend, err := store.OpenLevelDB(*dataDir)
	if err != nil {
		log.Fatal("failed opening content store", swarmlog.Err(err))
	}
	contentStore := store.New(backend)

	var bus transport.PubSub
	if *natsURL != "" {
		broker, err := transport.DialNATS(*natsURL)
		if err != nil {
			log.Fatal("failed connecting to NATS", swarmlog.Err(err))
		}
		bus = broker
		log.Info("connected to NATS broker", swarmlog.String("url", *natsURL))
	} else {
		bus = transport.NewInProc()
		log.Info("running with in-process broker")
	}

	roster := crdt.NewRoster(did.String())
	reputation := crdt.NewReputation()
	registry := crdt.NewTaskRegistry()
	boards := board.NewManager(roster, reputation, log)

	reg := prometheus.NewRegistry()
	m := metrics.NewMetrics(reg)

	healthReg := health.NewRegistry()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	server := rpc.NewServer(kp.Public, *hardened, m, log)
	registerHandlers(server, boards, roster, reputation, registry, contentStore, bus, cfg, kp, log)

	go func() {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
		mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
			report, _ := healthReg.Health(r.Context())
			fmt.Fprintf(w, "%+v", report)
		})
		if err := http.ListenAndServe(*metricsAddr, mux); err != nil {
			log.Error("metrics server stopped", swarmlog.Err(err))
		}
	}()

	log.Info("holond listening", swarmlog.String("socket", *rpcSocket))
	if err := server.ListenAndServe(ctx, "unix", *rpcSocket); err != nil {
		log.Fatal("rpc server stopped", swarmlog.Err(err))
	}
}

func loadOrCreateKeypair(path string, log swarmlog.Logger) (identity.Keypair, error) {
	if _, err := os.Stat(path); err == nil {
		return keystore.Load(path)
	}
	kp, err := identity.GenerateKeypair()
	if err != nil {
		return identity.Keypair{}, err
	}
	if err := keystore.Save(path, kp); err != nil {
		return identity.Keypair{}, err
	}
	log.Info("generated new agent keypair", swarmlog.String("path", path))
	return kp, nil
}
