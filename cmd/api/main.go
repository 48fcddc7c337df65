package main

import (
	"context"
	"database/sql"
	"errors"
	stdlog "log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cleberrangel/timelyai-api/internal/client"
	"github.com/cleberrangel/timelyai-api/internal/config"
	"github.com/cleberrangel/timelyai-api/internal/database"
	"github.com/cleberrangel/timelyai-api/internal/handler"
	"github.com/cleberrangel/timelyai-api/internal/identity"
	"github.com/cleberrangel/timelyai-api/internal/logger"
	"github.com/cleberrangel/timelyai-api/internal/metrics"
	"github.com/cleberrangel/timelyai-api/internal/migration"
	"github.com/cleberrangel/timelyai-api/internal/repository"
	"github.com/cleberrangel/timelyai-api/internal/service"
	"github.com/cleberrangel/timelyai-api/internal/websocket"
	"github.com/gin-gonic/gin"
)

const Version = "1.0.0"

const shutdownTimeout = 15 * time.Second

// stores agrupa os repositórios do backend escolhido
type stores struct {
	tasks   service.TaskStore
	goals   service.GoalStore
	history service.RecommendationStore
	db      *sql.DB
}

func main() {
	// Carrega configurações
	cfg, err := config.Load()
	if err != nil {
		stdlog.Fatalf("Erro ao carregar configurações: %v", err)
	}

	// Inicializa logger estruturado
	logger.Init(cfg.LogLevel, cfg.LogJSON)
	metrics.Init()
	log := logger.Global()
	log.Info().
		Str("version", Version).
		Str("port", cfg.Port).
		Str("storage", cfg.Storage).
		Str("auth", cfg.Auth.Provider).
		Str("log_level", cfg.LogLevel).
		Bool("log_json", cfg.LogJSON).
		Msg("TimelyAI API iniciando")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, err := openStores(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Erro ao inicializar armazenamento")
	}
	if st.db != nil {
		defer database.Close(st.db)
	}

	resolver, closeResolver, err := newResolver(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Erro ao inicializar identidade")
	}
	defer closeResolver()

	// Hub de WebSocket
	hub := websocket.NewHub(cfg.CORS.AllowedOrigin)
	go hub.Run(ctx)

	// Clientes externos
	recommender := client.NewRecommenderClient(client.RecommenderOptions{
		BaseURL:           cfg.Recommend.URL,
		Timeout:           cfg.Recommend.Timeout,
		RetryBackoff:      cfg.Recommend.RetryBackoff,
		RequestsPerSecond: cfg.Recommend.RateLimit,
	})
	calendar := client.NewCalendarClient("")

	// Serviços
	analytics := service.NewAnalyticsService(st.tasks, st.goals, hub, cfg.CacheTTL)
	defer analytics.Close()

	tasks := service.NewTaskService(st.tasks, analytics, hub)
	goals := service.NewGoalService(st.goals, analytics)
	recs := service.NewRecommendationService(recommender, st.history)
	recs.StartHistoryCleanup(ctx, service.DefaultHistoryCleanupInterval)
	events := service.NewEventService(calendar)

	// Configura modo do Gin
	gin.SetMode(cfg.GinMode)

	r := handler.NewRouter(handler.Routes{
		Resolver:        resolver,
		AllowedOrigin:   cfg.CORS.AllowedOrigin,
		Health:          handler.NewHealthHandler(st.db, hub, recommender, Version),
		Tasks:           handler.NewTaskHandler(tasks, service.NewExcelGenerator(st.tasks, st.goals)),
		Goals:           handler.NewGoalHandler(goals),
		Analytics:       handler.NewAnalyticsHandler(analytics),
		Recommendations: handler.NewRecommendationHandler(recs),
		Events:          handler.NewEventHandler(events),
		WebSocket:       handler.NewWebSocketHandler(hub),
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Str("port", cfg.Port).Msg("Servidor iniciando")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Erro ao iniciar servidor")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("Encerrando servidor")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Erro no shutdown")
	}
}

func openStores(ctx context.Context, cfg *config.Config) (*stores, error) {
	if cfg.Storage == config.StorageMemory {
		logger.Global().Warn().Msg("Armazenamento em memória: dados são perdidos ao reiniciar")
		mem := repository.NewMemoryStore()
		return &stores{tasks: mem, goals: mem, history: mem}, nil
	}

	db, err := database.Connect(ctx, database.Config{
		Host:     cfg.Database.Host,
		Port:     cfg.Database.Port,
		User:     cfg.Database.User,
		Password: cfg.Database.Password,
		DBName:   cfg.Database.Name,
		SSLMode:  cfg.Database.SSLMode,

		ConnectAttempts: cfg.Database.ConnectAttempts,
	})
	if err != nil {
		return nil, err
	}

	if err := migration.NewMigrator(db).Run(ctx); err != nil {
		database.Close(db)
		return nil, err
	}

	return &stores{
		tasks:   repository.NewTaskRepository(db),
		goals:   repository.NewGoalRepository(db),
		history: repository.NewRecommendationRepository(db),
		db:      db,
	}, nil
}

func newResolver(ctx context.Context, cfg *config.Config) (identity.Resolver, func(), error) {
	if cfg.Auth.Provider == config.AuthStatic {
		logger.Global().Warn().Msg("AUTH_PROVIDER=static: use apenas em desenvolvimento")
		return identity.NewStaticResolver(cfg.Auth.TokenAPI), func() {}, nil
	}

	google, err := identity.NewGoogleResolver(ctx, identity.GoogleOptions{ClientID: cfg.Auth.ClientID})
	if err != nil {
		return nil, nil, err
	}
	return google, google.Close, nil
}
