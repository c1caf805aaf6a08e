package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	acceptRequestHandler "github.com/m04kA/SMC-RequestSync/internal/api/handlers/accept_request"
	bindSessionHandler "github.com/m04kA/SMC-RequestSync/internal/api/handlers/bind_session"
	cancelRequestHandler "github.com/m04kA/SMC-RequestSync/internal/api/handlers/cancel_request"
	clearErrorHandler "github.com/m04kA/SMC-RequestSync/internal/api/handlers/clear_error"
	createRequestHandler "github.com/m04kA/SMC-RequestSync/internal/api/handlers/create_request"
	getNotificationsHandler "github.com/m04kA/SMC-RequestSync/internal/api/handlers/get_notifications"
	getRequestHandler "github.com/m04kA/SMC-RequestSync/internal/api/handlers/get_request"
	getRequestHistoryHandler "github.com/m04kA/SMC-RequestSync/internal/api/handlers/get_request_history"
	getStateHandler "github.com/m04kA/SMC-RequestSync/internal/api/handlers/get_state"
	listAvailableRequestsHandler "github.com/m04kA/SMC-RequestSync/internal/api/handlers/list_available_requests"
	listMyRequestsHandler "github.com/m04kA/SMC-RequestSync/internal/api/handlers/list_my_requests"
	unbindSessionHandler "github.com/m04kA/SMC-RequestSync/internal/api/handlers/unbind_session"
	updateRequestHandler "github.com/m04kA/SMC-RequestSync/internal/api/handlers/update_request"
	"github.com/m04kA/SMC-RequestSync/internal/api/middleware"
	"github.com/m04kA/SMC-RequestSync/internal/config"
	"github.com/m04kA/SMC-RequestSync/internal/domain"
	journalRepo "github.com/m04kA/SMC-RequestSync/internal/infra/storage/journal"
	"github.com/m04kA/SMC-RequestSync/internal/integrations/realtime"
	"github.com/m04kA/SMC-RequestSync/internal/integrations/requestservice"
	journalService "github.com/m04kA/SMC-RequestSync/internal/service/journal"
	"github.com/m04kA/SMC-RequestSync/internal/service/notifications"
	"github.com/m04kA/SMC-RequestSync/internal/service/reconciler"
	requestsService "github.com/m04kA/SMC-RequestSync/internal/service/requests"
	"github.com/m04kA/SMC-RequestSync/internal/service/session"
	"github.com/m04kA/SMC-RequestSync/internal/store"
	"github.com/m04kA/SMC-RequestSync/pkg/clock"
	"github.com/m04kA/SMC-RequestSync/pkg/logger"
	"github.com/m04kA/SMC-RequestSync/pkg/metrics"
)

// journalComponent журнал событий: запись из reconciler и чтение истории для API
type journalComponent interface {
	Record(entry domain.JournalEntry)
	History(ctx context.Context, requestID string, limit int) ([]*domain.JournalEntry, error)
}

func main() {
	// Загружаем конфигурацию
	cfg, err := config.Load("config.toml")
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Инициализируем логгер
	log, err := logger.New(cfg.Logs.File, cfg.Logs.Level)
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Close()

	log.Info("Starting SMC-RequestSync...")
	log.Info("Configuration loaded from config.toml")

	// Инициализируем метрики (если включены)
	var metricsCollector *metrics.Metrics
	if cfg.Metrics.Enabled {
		metricsCollector = metrics.New(cfg.Metrics.ServiceName)
		log.Info("Metrics enabled at %s", cfg.Metrics.Path)
	}

	rootCtx, stopBackground := context.WithCancel(context.Background())
	var background sync.WaitGroup

	// Журнал событий (если включен): PostgreSQL + асинхронная запись
	var eventJournal journalComponent = journalService.Noop{}
	var db *sql.DB

	if cfg.Journal.Enabled {
		db, err = sql.Open("postgres", cfg.Database.DSN())
		if err != nil {
			log.Fatal("Failed to connect to database: %v", err)
		}

		// Настраиваем connection pool
		db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
		db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
		db.SetConnMaxLifetime(time.Duration(cfg.Database.ConnMaxLifetime) * time.Second)

		// Проверяем соединение
		if err := db.Ping(); err != nil {
			log.Fatal("Failed to ping database: %v", err)
		}
		log.Info("Successfully connected to database (host=%s, port=%d, db=%s)",
			cfg.Database.Host, cfg.Database.Port, cfg.Database.DBName)

		recorder := journalService.NewRecorder(
			journalRepo.NewRepository(db),
			cfg.Journal.BufferSize,
			metricsCollector,
			log,
		)
		background.Add(1)
		go func() {
			defer background.Done()
			recorder.Run(rootCtx)
		}()
		eventJournal = recorder
		log.Info("Event journal enabled (buffer=%d)", cfg.Journal.BufferSize)
	} else {
		log.Info("Event journal disabled")
	}

	// Инициализируем интеграционных клиентов
	backendClient := requestservice.NewClient(
		cfg.Backend.URL,
		time.Duration(cfg.Backend.Timeout)*time.Second,
		metricsCollector,
		log,
	)
	realtimeClient := realtime.NewClient(realtime.Options{
		URL:               cfg.Realtime.URL,
		HandshakeTimeout:  time.Duration(cfg.Realtime.HandshakeTimeout) * time.Second,
		HeartbeatInterval: time.Duration(cfg.Realtime.HeartbeatInterval) * time.Second,
		ReconnectRate:     cfg.Realtime.ReconnectRate,
		ReconnectBurst:    cfg.Realtime.ReconnectBurst,
	}, metricsCollector, log)
	log.Info("Integration clients initialized (Backend=%s timeout=%ds, Realtime=%s)",
		cfg.Backend.URL, cfg.Backend.Timeout, cfg.Realtime.URL)

	// Инициализируем хранилище и сервисы
	appClock := clock.NewRealClock()
	requestStore := store.New()
	inbox := notifications.NewInbox(cfg.Notifications.Capacity, log)

	eventReconciler := reconciler.New(
		realtimeClient,
		requestStore,
		inbox,
		eventJournal,
		metricsCollector,
		appClock,
		log,
	)
	requestSvc := requestsService.NewService(backendClient, requestStore, appClock, log)
	sessionManager := session.NewManager(
		backendClient,
		realtimeClient,
		eventReconciler,
		requestStore,
		inbox,
		appClock,
		log,
	)

	// Инициализируем handlers
	bindSession := bindSessionHandler.NewHandler(sessionManager, log)
	unbindSession := unbindSessionHandler.NewHandler(sessionManager, log)
	getState := getStateHandler.NewHandler(requestStore, log)
	clearError := clearErrorHandler.NewHandler(requestSvc)
	createRequest := createRequestHandler.NewHandler(requestSvc, log)
	listMyRequests := listMyRequestsHandler.NewHandler(requestSvc, log)
	listAvailableRequests := listAvailableRequestsHandler.NewHandler(requestSvc, log)
	getRequest := getRequestHandler.NewHandler(requestSvc, log)
	updateRequest := updateRequestHandler.NewHandler(requestSvc, log)
	acceptRequest := acceptRequestHandler.NewHandler(requestSvc, log)
	cancelRequest := cancelRequestHandler.NewHandler(requestSvc, log)
	getRequestHistory := getRequestHistoryHandler.NewHandler(eventJournal, log)
	getNotifications := getNotificationsHandler.NewHandler(inbox)

	// Настраиваем роутер
	r := mux.NewRouter()

	// Добавляем metrics middleware (если метрики включены)
	if cfg.Metrics.Enabled {
		r.Use(middleware.MetricsMiddleware(metricsCollector))
		r.Handle(cfg.Metrics.Path, promhttp.Handler()).Methods(http.MethodGet)
		log.Info("Prometheus metrics endpoint exposed at %s", cfg.Metrics.Path)
	}

	// API prefix
	api := r.PathPrefix("/api/v1").Subrouter()

	// ============================================================
	// PUBLIC ROUTES (без привязанной сессии)
	// ============================================================

	// Привязка сессии
	api.HandleFunc("/session", bindSession.Handle).Methods(http.MethodPost)

	// ============================================================
	// PROTECTED ROUTES (требуют привязанной сессии)
	// ============================================================

	protected := api.PathPrefix("").Subrouter()
	protected.Use(middleware.Session(sessionManager))

	// --- Сессия и состояние ---
	protected.HandleFunc("/session", unbindSession.Handle).Methods(http.MethodDelete)
	protected.HandleFunc("/state", getState.Handle).Methods(http.MethodGet)
	protected.HandleFunc("/state/error", clearError.Handle).Methods(http.MethodDelete)
	protected.HandleFunc("/notifications", getNotifications.Handle).Methods(http.MethodGet)

	// --- Заявки ---
	// Списки регистрируются раньше /requests/{requestId}
	protected.HandleFunc("/requests", createRequest.Handle).Methods(http.MethodPost)
	protected.HandleFunc("/requests/mine", listMyRequests.Handle).Methods(http.MethodGet)
	protected.HandleFunc("/requests/available", listAvailableRequests.Handle).Methods(http.MethodGet)
	protected.HandleFunc("/requests/{requestId}", getRequest.Handle).Methods(http.MethodGet)
	protected.HandleFunc("/requests/{requestId}", updateRequest.Handle).Methods(http.MethodPatch)
	protected.HandleFunc("/requests/{requestId}/accept", acceptRequest.Handle).Methods(http.MethodPost)
	protected.HandleFunc("/requests/{requestId}/cancel", cancelRequest.Handle).Methods(http.MethodPost)
	protected.HandleFunc("/requests/{requestId}/history", getRequestHistory.Handle).Methods(http.MethodGet)

	// Создаем HTTP сервер
	addr := fmt.Sprintf(":%d", cfg.Server.HTTPPort)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	// Graceful shutdown
	go func() {
		log.Info("Starting server on %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Server failed to start: %v", err)
		}
	}()

	// Ожидаем сигнал завершения
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(
		context.Background(),
		time.Duration(cfg.Server.ShutdownTimeout)*time.Second,
	)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown: %v", err)
	}

	// Освобождаем сессию, затем дописываем журнал
	if err := sessionManager.Unbind(shutdownCtx); err != nil {
		log.Warn("Session released with errors: %v", err)
	}

	stopBackground()
	background.Wait()

	if db != nil {
		if err := db.Close(); err != nil {
			log.Warn("Failed to close database: %v", err)
		}
	}

	log.Info("Server stopped gracefully")
}
