package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"industrial-ai-backend/internal/aggregator"
	"industrial-ai-backend/internal/ai"
	"industrial-ai-backend/internal/api"
	"industrial-ai-backend/internal/catalog"
	"industrial-ai-backend/internal/database"
	"industrial-ai-backend/internal/models"
	"industrial-ai-backend/internal/mqtt"
	"industrial-ai-backend/internal/services"
	"industrial-ai-backend/internal/twin"
	"industrial-ai-backend/internal/views"
)

const shutdownTimeout = 5 * time.Second

func runServe(cmd *cobra.Command, args []string) error {
	logger.Info("Starting Industrial AI Backend")

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	transport, err := newTransport(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize AI transport: %w", err)
	}

	cat, err := catalog.Default()
	if err != nil {
		return err
	}

	analyzer := ai.NewAnalyzer(transport, analyzerConfig(cfg), logger.Named("ai"))

	// === Storage ===
	var (
		readingStore  services.ReadingStore
		reportStore   services.ReportStore
		solutionStore services.SolutionStore
		registry      api.DeviceRegistry
	)
	if cfg.ClickHouseEnabled {
		db, err := database.NewClickHouseDB(ctx, database.Options{
			Addr:     cfg.ClickHouseAddr,
			Database: cfg.ClickHouseDB,
			Username: cfg.ClickHouseUser,
			Password: cfg.ClickHousePass,
		}, logger.Named("clickhouse"))
		if err != nil {
			return fmt.Errorf("failed to initialize ClickHouse: %w", err)
		}
		defer db.Close()

		readingStore, reportStore, solutionStore, registry = db, db, db, db
	} else {
		logger.Info("ClickHouse disabled, reports are not persisted")
	}

	// === Services ===
	buffer := aggregator.NewSensorBuffer(cfg.AnalysisCooldown, logger.Named("aggregator"))

	maintenanceConfig := services.DefaultMaintenanceServiceConfig()
	maintenanceConfig.FallbackReadings = cat.SensorReadings()
	maintenance := services.NewMaintenanceService(analyzer, reportStore, buffer, maintenanceConfig, logger.Named("maintenance"))
	buffer.SetAnalysisCallback(maintenance.Enqueue)

	configurator := services.NewConfiguratorService(analyzer, solutionStore, logger.Named("configurator"))
	sensorService := services.NewSensorService(readingStore, buffer, services.DefaultSensorServiceConfig(), logger.Named("sensors"))

	g, gctx := errgroup.WithContext(ctx)

	// === MQTT ===
	var broker api.BrokerStatus
	if cfg.MQTTEnabled {
		mqttClient, err := mqtt.NewClient(mqtt.ClientConfig{
			Broker:   cfg.MQTTBroker,
			ClientID: cfg.MQTTClientID,
			Username: cfg.MQTTUsername,
			Password: cfg.MQTTPassword,
		}, logger.Named("mqtt"))
		if err != nil {
			return fmt.Errorf("failed to initialize MQTT client: %w", err)
		}
		defer mqttClient.Close()
		broker = mqttClient

		reportChan := make(chan *models.MaintenanceReport, 50)
		maintenance.ReportChan = reportChan

		publisher := mqtt.NewPublisher(
			mqttClient.GetNativeClient(),
			mqtt.PublisherConfig{ReportTopic: cfg.MQTTTopicReport},
			reportChan,
			logger.Named("mqtt.publisher"),
		)
		g.Go(func() error {
			publisher.Start(gctx)
			return nil
		})

		subscriber := mqtt.NewSubscriber(
			mqttClient.GetNativeClient(),
			mqtt.SubscriberConfig{
				ReadingTopic:     cfg.MQTTTopicReading,
				AnalysisReqTopic: cfg.MQTTTopicAnalysisReq,
			},
			sensorService.ReadingChan,
			maintenance.RequestChan,
			logger.Named("mqtt.subscriber"),
		)
		if err := subscriber.SubscribeAll(); err != nil {
			return fmt.Errorf("failed to subscribe to MQTT topics: %w", err)
		}
	} else {
		logger.Info("MQTT disabled, live sensor ingest is off")
	}

	g.Go(func() error {
		sensorService.Start(gctx)
		return nil
	})
	g.Go(func() error {
		maintenance.Start(gctx)
		return nil
	})

	// === HTTP ===
	handler := api.NewHandler(api.Deps{
		Catalog:          cat,
		Twin:             twin.NewSimulator(),
		Maintenance:      maintenance,
		Configurator:     configurator,
		MaintenanceView:  views.NewController[models.MaintenanceReport]("maintenance", logger.Named("views")),
		ConfiguratorView: views.NewController[models.AutomationSolution]("configurator", logger.Named("views")),
		Registry:         registry,
		Live:             buffer,
		Broker:           broker,
	}, logger.Named("api"))

	router := mux.NewRouter()
	handler.RegisterRoutes(router)

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g.Go(func() error {
		logger.Info("HTTP server listening", zap.String("addr", cfg.HTTPAddr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server failed: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	logger.Info("Industrial AI Backend is running",
		zap.Bool("mqtt", cfg.MQTTEnabled),
		zap.Bool("clickhouse", cfg.ClickHouseEnabled),
		zap.String("maintenance_model", cfg.MaintenanceModel),
		zap.String("configurator_model", cfg.ConfiguratorModel))

	err = g.Wait()
	logger.Info("Shutdown complete")
	return err
}
