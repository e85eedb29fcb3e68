package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"tambo-herd/internal/application/services"
	"tambo-herd/internal/config"
	"tambo-herd/internal/domain/aggregate"
	"tambo-herd/internal/domain/event"
	"tambo-herd/internal/infrastructure/bus"
	"tambo-herd/internal/infrastructure/eventstore"
	httptransport "tambo-herd/internal/infrastructure/http"
	"tambo-herd/internal/infrastructure/mongo"
	"tambo-herd/internal/infrastructure/projection"
	"tambo-herd/internal/scheduler"
	jwtutil "tambo-herd/pkg/jwt"
	"tambo-herd/pkg/logger"
	"tambo-herd/pkg/middleware"
)

func main() {
	cfg, err := config.Load("")
	if err != nil {
		panic(err)
	}

	log := logger.Must(logger.New())
	defer log.Sync()
	middleware.SetLogger(logger.Named(log, "http"))

	mongoClient, err := mongo.NewClient(&mongo.Config{
		URI:      cfg.MongoDB.URI,
		Database: cfg.MongoDB.DBName,
		Timeout:  cfg.MongoDB.Timeout,
	})
	if err != nil {
		log.Fatal("mongodb connection failed", zap.Error(err))
	}
	defer mongoClient.Close()
	if err := mongoClient.Ping(); err != nil {
		log.Fatal("mongodb unreachable", zap.Error(err))
	}

	herdSync := projection.NewMongoHerdSync(mongoClient.Database())
	store := eventstore.NewHerdStore()
	warmStart(store, herdSync, cfg.Herd.EstablishmentID, log)

	eventBus := bus.NewInMemoryEventBus(logger.Named(log, "bus"))
	subscribeSync(eventBus, store, herdSync)

	herdService := services.NewHerdService(store, eventBus, herdSync, logger.Named(log, "herd"))

	tokens := jwtutil.NewManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	userRepo := mongo.NewUserRepository(mongoClient.Database())
	authService := services.NewAuthService(userRepo, tokens, logger.Named(log, "auth"))

	bootstrapCtx, cancelBootstrap := context.WithTimeout(context.Background(), cfg.MongoDB.Timeout)
	if err := authService.EnsureAdmin(bootstrapCtx, cfg.Auth.AdminEmail, cfg.Auth.AdminPassword, cfg.Herd.EstablishmentID); err != nil {
		log.Warn("bootstrap admin setup failed", zap.Error(err))
	}
	cancelBootstrap()

	sched := scheduler.NewScheduler(*cfg, herdService, logger.Named(log, "scheduler"))
	sched.Start()
	defer sched.Stop()

	router := httptransport.NewRouter(
		httptransport.NewHTTPHerdController(herdService),
		httptransport.NewHTTPAuthController(authService),
		tokens,
	)
	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		log.Info("server listening", zap.String("port", cfg.Server.Port))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown failed", zap.Error(err))
	}
}

// warmStart rebuilds the in-memory store from the cloud collections: animals
// fold from their persisted baseline plus the event log, so effects are never
// applied twice. A failed load starts the session empty rather than aborting.
func warmStart(store *eventstore.HerdStore, herdSync projection.HerdSync, establishmentID string, log *zap.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	animalDocs, eventDocs, err := herdSync.LoadAll(ctx, establishmentID)
	if err != nil {
		log.Warn("warm start failed, starting empty", zap.Error(err))
		return
	}

	animals := make([]*aggregate.Animal, 0, len(animalDocs))
	for _, doc := range animalDocs {
		a, err := doc.ToAggregate()
		if err != nil {
			log.Warn("skipping stored animal", zap.String("animal_id", doc.ID), zap.Error(err))
			continue
		}
		animals = append(animals, a)
	}

	events := make([]event.DomainEvent, 0, len(eventDocs))
	for _, doc := range eventDocs {
		ev, err := doc.ToDomain()
		if err != nil {
			log.Warn("skipping stored event", zap.Int64("event_id", doc.ID), zap.Error(err))
			continue
		}
		events = append(events, ev)
	}

	store.Seed(animals, events)
	log.Info("warm start complete", zap.Int("animals", len(animals)), zap.Int("events", len(events)))
}

// subscribeSync mirrors every published event, and its animal's refreshed
// state, into the cloud collections. Failures surface through the bus logger.
func subscribeSync(eventBus bus.EventBus, store *eventstore.HerdStore, herdSync projection.HerdSync) {
	eventBus.Subscribe("*", bus.EventHandlerFunc(func(ctx context.Context, ev event.DomainEvent) error {
		syncCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := herdSync.UpsertEvents(syncCtx, []*projection.EventReadModel{projection.NewEventReadModel(ev)}); err != nil {
			return err
		}
		if a, ok := store.Animal(ev.AggregateID()); ok {
			return herdSync.UpsertAnimal(syncCtx, projection.NewAnimalReadModel(a))
		}
		return nil
	}))
}
