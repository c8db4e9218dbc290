package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"hose_installation/internal/config"
	"hose_installation/internal/handlers"
	"hose_installation/internal/installation"
	"hose_installation/internal/logger"
	"hose_installation/internal/nfc"
	"hose_installation/internal/repository"
	"hose_installation/internal/repository/db"
	"hose_installation/internal/scan"
	"hose_installation/internal/server"
	"hose_installation/internal/service"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/spf13/cobra"
)

const (
	hubCapacity     = 8
	shutdownTimeout = 10 * time.Second
	mqttQuiesce     = 250 // ms
)

func newServeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API, the NFC status poller and the reader bridge",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(a.cfg, a.log)
		},
	}
}

func runServe(cfg *config.Config, log *logger.Logger) error {
	conn, err := db.InitDB(cfg.DB.Path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := conn.Close(); cerr != nil {
			log.Errorw("sqlite_close_failed", "err", cerr)
		}
	}()

	poller := nfc.NewPoller(nfc.Options{
		Endpoint:   cfg.NFC.Endpoint,
		Timeout:    cfg.NFC.Timeout,
		Retries:    cfg.NFC.Retries,
		RetryDelay: cfg.NFC.RetryDelay,
		Logger:     log.Named("nfc"),
	})
	hub := nfc.NewHub(hubCapacity)
	defer hub.Close()

	readers, client := readerBridge(cfg.MQTT, log)
	if client != nil {
		defer client.Disconnect(mqttQuiesce)
	}

	// wire dependencies
	repos := repository.NewRepository(conn)
	services := service.NewService(repos, service.Deps{
		Auth: service.AuthOptions{
			SigningKey: cfg.Auth.SigningKey,
			TokenTTL:   cfg.Auth.TokenTTL,
			IsAdmin:    cfg.Auth.IsAdmin,
		},
		Poller:     poller,
		Hub:        hub,
		SessionTTL: cfg.Sessions.TTL,
		Readers:    readers,
		Logger:     log,
	})
	apiHandler := handlers.NewHandler(services, log, cfg.CORS.Origins...)

	// context for background goroutines
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var wg sync.WaitGroup
	background := func(r service.Runner, tick time.Duration) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			r.Run(ctx, tick)
		}()
	}
	background(services.StatusMonitor, cfg.NFC.Interval)
	background(services.SessionSweeper, cfg.Sessions.SweepInterval)

	srv := &server.Server{}
	runHTTPServer(srv, cfg.Port, apiHandler.InitRoutes(), log)
	log.Infow("server_started", "port", cfg.Port, "nfc_endpoint", cfg.NFC.Endpoint, "readers", readers != nil)

	err = waitForShutdown(cancel, srv, log)
	// let the loops release readers and sessions before the database closes
	wg.Wait()
	return err
}

// readerBridge connects to the MQTT broker when one is configured. Without it
// sessions can only be fed by the phone.
func readerBridge(cfg config.MQTTConfig, log *logger.Logger) (installation.ReaderFactory, mqtt.Client) {
	client, err := scan.Dial(scan.MQTTOptions{Broker: cfg.Broker, ClientID: cfg.ClientID, TopicPrefix: cfg.TopicPrefix})
	if err != nil {
		if errors.Is(err, scan.ErrUnavailable) && cfg.Broker == "" {
			log.Infow("mqtt_disabled")
		} else {
			log.Warnw("mqtt_connect_failed", "broker", cfg.Broker, "err", err)
		}
		return nil, nil
	}
	prefix := cfg.TopicPrefix
	return func(readerID string) scan.Source {
		return scan.NewMQTTSource(client, prefix, readerID)
	}, client
}

// runHTTPServer runs the HTTP server in a separate goroutine.
func runHTTPServer(srv *server.Server, port string, handler http.Handler, log *logger.Logger) {
	go func() {
		if err := srv.Run(port, handler); err != nil {
			log.Fatalw("error starting server", "err", err)
		}
	}()
}

// waitForShutdown listens for termination signals and performs graceful shutdown.
func waitForShutdown(cancel context.CancelFunc, srv *server.Server, log *logger.Logger) error {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Infow("shutting down server...")

	// stop background goroutines
	cancel()

	// allow in-flight requests to complete
	ctx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()

	return srv.Shutdown(ctx)
}
