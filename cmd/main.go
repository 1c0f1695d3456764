package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	gorillaHandlers "github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	cancelReservationHandler "github.com/m04kA/SMC-ReservationService/internal/api/handlers/cancel_reservation"
	createReservationHandler "github.com/m04kA/SMC-ReservationService/internal/api/handlers/create_reservation"
	getAvailableSlotsHandler "github.com/m04kA/SMC-ReservationService/internal/api/handlers/get_available_slots"
	getPolicyHandler "github.com/m04kA/SMC-ReservationService/internal/api/handlers/get_policy"
	getReservationHandler "github.com/m04kA/SMC-ReservationService/internal/api/handlers/get_reservation"
	listDayReservationsHandler "github.com/m04kA/SMC-ReservationService/internal/api/handlers/list_day_reservations"
	listReservationsHandler "github.com/m04kA/SMC-ReservationService/internal/api/handlers/list_reservations"
	replacePolicyHandler "github.com/m04kA/SMC-ReservationService/internal/api/handlers/replace_policy"
	retryNotificationHandler "github.com/m04kA/SMC-ReservationService/internal/api/handlers/retry_notification"
	updateReservationHandler "github.com/m04kA/SMC-ReservationService/internal/api/handlers/update_reservation"
	updateReservationStatusHandler "github.com/m04kA/SMC-ReservationService/internal/api/handlers/update_reservation_status"
	"github.com/m04kA/SMC-ReservationService/internal/api/middleware"
	"github.com/m04kA/SMC-ReservationService/internal/config"
	policyRepo "github.com/m04kA/SMC-ReservationService/internal/infra/storage/policy"
	reservationRepo "github.com/m04kA/SMC-ReservationService/internal/infra/storage/reservation"
	"github.com/m04kA/SMC-ReservationService/internal/integrations/sendgrid"
	"github.com/m04kA/SMC-ReservationService/internal/jobs"
	"github.com/m04kA/SMC-ReservationService/internal/notification"
	policyService "github.com/m04kA/SMC-ReservationService/internal/service/policy"
	reservationsService "github.com/m04kA/SMC-ReservationService/internal/service/reservations"
	createReservationUC "github.com/m04kA/SMC-ReservationService/internal/usecase/create_reservation"
	getAvailableSlotsUC "github.com/m04kA/SMC-ReservationService/internal/usecase/get_available_slots"
	updateReservationUC "github.com/m04kA/SMC-ReservationService/internal/usecase/update_reservation"
	"github.com/m04kA/SMC-ReservationService/pkg/dbmetrics"
	"github.com/m04kA/SMC-ReservationService/pkg/logger"
	"github.com/m04kA/SMC-ReservationService/pkg/metrics"
	"github.com/m04kA/SMC-ReservationService/pkg/txmanager"
)

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

	log.Info("Starting SMC-ReservationService...")
	log.Info("Configuration loaded from config.toml (timezone=%s)", cfg.App.Timezone)

	// Инициализируем метрики (если включены); nil *Metrics ничего не пишет
	var metricsCollector *metrics.Metrics
	stopMetricsCh := make(chan struct{})

	if cfg.Metrics.Enabled {
		metricsCollector = metrics.New(cfg.Metrics.ServiceName)
		log.Info("Metrics enabled at %s", cfg.Metrics.Path)
	}

	// Подключаемся к базе данных
	db, err := sql.Open("postgres", cfg.Database.DSN())
	if err != nil {
		log.Fatal("Failed to connect to database: %v", err)
	}
	defer db.Close()

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

	wrappedDB := dbmetrics.WrapWithDefault(db, metricsCollector, stopMetricsCh)
	txMgr := txmanager.NewTransactionManager(wrappedDB).WithMaxAttempts(cfg.Database.TxMaxAttempts)

	// Репозитории
	reservationRepository := reservationRepo.NewRepository(wrappedDB)
	policyRepository := policyRepo.NewRepository(wrappedDB)

	// "Сегодня" считается в часовом поясе ресторана
	timeProvider := &createReservationUC.RealTimeProvider{Location: cfg.Location()}

	// Сервисы
	policySvc := policyService.NewService(policyRepository, txMgr, log)
	reservationsSvc := reservationsService.NewService(reservationRepository, txMgr, timeProvider, log)

	// Уведомления
	var (
		dispatcher  *notification.Dispatcher
		notifier    createReservationUC.Notifier
		redisClient *redis.Client
	)

	mailer := sendgrid.NewClient(sendgrid.Config{
		APIKey:    cfg.SendGrid.APIKey,
		FromEmail: cfg.SendGrid.FromEmail,
		FromName:  cfg.SendGrid.FromName,
		Host:      cfg.SendGrid.Host,
		Timeout:   time.Duration(cfg.SendGrid.Timeout) * time.Second,
	}, log)
	if !mailer.Configured() {
		log.Warn("SendGrid is not configured: confirmations will be marked failed until SENDGRID_API_KEY is set")
	}

	var queue notification.Queue
	switch cfg.Notifications.Queue {
	case config.QueueRedis:
		redisClient = notification.NewRedisClient(cfg.Redis.Address, cfg.Redis.Password, cfg.Redis.DB, cfg.Redis.PoolSize)
		if err := notification.PingRedis(context.Background(), redisClient); err != nil {
			log.Fatal("Failed to connect to Redis at %s: %v", cfg.Redis.Address, err)
		}
		queue = notification.NewRedisQueue(redisClient, cfg.Redis.QueueKey, time.Duration(cfg.Redis.PopTimeout)*time.Second)
		log.Info("Notification queue: redis (%s, key=%s)", cfg.Redis.Address, cfg.Redis.QueueKey)
	default:
		queue = notification.NewMemoryQueue(cfg.Notifications.QueueSize, time.Second)
		log.Info("Notification queue: memory (size=%d)", cfg.Notifications.QueueSize)
	}

	dispatcher = notification.NewDispatcher(reservationRepository, mailer, queue, metricsCollector, log, notification.Config{
		Workers:       cfg.Notifications.Workers,
		SendTimeout:   time.Duration(cfg.Notifications.SendTimeout) * time.Second,
		RatePerSecond: cfg.Notifications.RatePerSecond,
		Burst:         cfg.Notifications.Burst,
		StaleAfter:    time.Duration(cfg.Notifications.StaleAfter) * time.Second,
	}).WithTimeProvider(timeProvider)

	workersCtx, stopWorkers := context.WithCancel(context.Background())
	defer stopWorkers()

	if cfg.Notifications.Enabled {
		notifier = dispatcher
		dispatcher.Start(workersCtx)
	} else {
		notifier = notification.NewDisabledNotifier(reservationRepository, metricsCollector, log)
		log.Warn("Notifications disabled: confirmations are marked failed and can be sent later via retry")
	}

	// Use cases
	createReservationUseCase := createReservationUC.NewUseCase(
		reservationRepository,
		policySvc,
		notifier,
		txMgr,
		metricsCollector,
		timeProvider,
		log,
	)
	updateReservationUseCase := updateReservationUC.NewUseCase(
		reservationRepository,
		policySvc,
		txMgr,
		timeProvider,
		log,
	)
	getAvailableSlotsUseCase := getAvailableSlotsUC.NewUseCase(
		reservationRepository,
		policySvc,
		timeProvider,
		log,
	)

	// Фоновые задачи
	var scheduler *jobs.Scheduler
	if cfg.Jobs.CompletionEnabled {
		scheduler = jobs.NewScheduler(reservationsSvc, cfg.Jobs.CompletionSchedule, cfg.Location(), time.Minute, log)
		if err := scheduler.Start(); err != nil {
			log.Fatal("Failed to start jobs: %v", err)
		}
	}

	// Handlers
	createReservation := createReservationHandler.NewHandler(createReservationUseCase, log)
	updateReservation := updateReservationHandler.NewHandler(updateReservationUseCase, log)
	getAvailableSlots := getAvailableSlotsHandler.NewHandler(getAvailableSlotsUseCase, log)
	getReservation := getReservationHandler.NewHandler(reservationsSvc, log)
	listReservations := listReservationsHandler.NewHandler(reservationsSvc, log)
	cancelReservation := cancelReservationHandler.NewHandler(reservationsSvc, log)
	listDayReservations := listDayReservationsHandler.NewHandler(reservationsSvc, log)
	updateReservationStatus := updateReservationStatusHandler.NewHandler(reservationsSvc, log)
	getPolicy := getPolicyHandler.NewHandler(policySvc, log)
	replacePolicy := replacePolicyHandler.NewHandler(policySvc, log)
	retryNotification := retryNotificationHandler.NewHandler(dispatcher, log)

	// Настраиваем роутер
	r := mux.NewRouter()

	if cfg.Metrics.Enabled {
		r.Use(middleware.MetricsMiddleware(metricsCollector))
		r.Handle(cfg.Metrics.Path, promhttp.Handler()).Methods(http.MethodGet)
		log.Info("Prometheus metrics endpoint exposed at %s", cfg.Metrics.Path)
	}

	api := r.PathPrefix("/api/v1").Subrouter()

	// ============================================================
	// GUEST ROUTES
	// ============================================================

	api.HandleFunc("/slots", getAvailableSlots.Handle).Methods(http.MethodGet)
	api.HandleFunc("/reservations", createReservation.Handle).Methods(http.MethodPost)
	api.HandleFunc("/reservations", listReservations.Handle).Methods(http.MethodGet)
	api.HandleFunc("/reservations/{reservationId}", getReservation.Handle).Methods(http.MethodGet)
	api.HandleFunc("/reservations/{reservationId}", updateReservation.Handle).Methods(http.MethodPut)
	api.HandleFunc("/reservations/{reservationId}/cancel", cancelReservation.Handle).Methods(http.MethodPatch)

	// ============================================================
	// ADMIN ROUTES (аутентификация на стороне шлюза)
	// ============================================================

	api.HandleFunc("/policy", getPolicy.Handle).Methods(http.MethodGet)
	api.HandleFunc("/policy", replacePolicy.Handle).Methods(http.MethodPut)
	api.HandleFunc("/admin/reservations", listDayReservations.Handle).Methods(http.MethodGet)
	api.HandleFunc("/admin/reservations/{reservationId}/status", updateReservationStatus.Handle).Methods(http.MethodPatch)
	api.HandleFunc("/admin/reservations/{reservationId}/notification/retry", retryNotification.Handle).Methods(http.MethodPost)

	// Паника в обработчике не должна ронять процесс
	var handler http.Handler = gorillaHandlers.RecoveryHandler(
		gorillaHandlers.RecoveryLogger(log),
		gorillaHandlers.PrintRecoveryStack(true),
	)(r)

	if len(cfg.Server.CORSOrigins) > 0 {
		handler = gorillaHandlers.CORS(
			gorillaHandlers.AllowedOrigins(cfg.Server.CORSOrigins),
			gorillaHandlers.AllowedMethods([]string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch}),
			gorillaHandlers.AllowedHeaders([]string{"Content-Type"}),
		)(handler)
	}

	// Создаем HTTP сервер
	addr := fmt.Sprintf(":%d", cfg.Server.HTTPPort)
	srv := &http.Server{
		Addr:         addr,
		Handler:      handler,
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

	if scheduler != nil {
		scheduler.Stop(shutdownCtx)
	}

	dispatcher.Stop()

	if redisClient != nil {
		if err := redisClient.Close(); err != nil {
			log.Error("Failed to close Redis client: %v", err)
		}
	}

	// Останавливаем сбор метрик connection pool
	close(stopMetricsCh)

	log.Info("Server stopped gracefully")
}
