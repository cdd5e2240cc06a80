package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.mongodb.org/mongo-driver/mongo"
	"google.golang.org/api/option"

	fbapp "firebase.google.com/go/v4"

	"agroconnect/internal/adapter/api"
	"agroconnect/internal/adapter/api/handler"
	apimiddleware "agroconnect/internal/adapter/api/middleware"
	"agroconnect/internal/adapter/api/router"
	"agroconnect/internal/adapter/repository"
	domainrepo "agroconnect/internal/domain/repository"
	"agroconnect/internal/infrastructure/firebase"
	"agroconnect/internal/infrastructure/mongodb"
	"agroconnect/internal/infrastructure/outbox"
	"agroconnect/internal/infrastructure/ratelimit"
	"agroconnect/internal/infrastructure/storage"
	"agroconnect/internal/usecase"
	"agroconnect/pkg/config"
	"agroconnect/pkg/logger"
	"agroconnect/pkg/retry"
)

const serviceName = "AgroConnect API"

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Get().Fatalf("Failed to load configuration: %v", err)
	}

	logger.Init(logger.Options{
		Level:  cfg.LogLevel,
		Format: cfg.LogFormat,
		File:   cfg.LogFile,
	})
	log := logger.Get()

	ctx := context.Background()

	var opt option.ClientOption
	if cfg.FirebaseServiceAccountJSON != "" {
		log.Info("Using Firebase service account from environment variable")
		opt = option.WithCredentialsJSON([]byte(cfg.FirebaseServiceAccountJSON))
	} else {
		path := cfg.ServiceAccountPath()
		if _, err := os.Stat(path); os.IsNotExist(err) {
			log.Fatalf("Service account file does not exist: %s", path)
		}
		log.Infof("Using Firebase service account from file: %s", path)
		opt = option.WithCredentialsFile(path)
	}

	firebaseApp, err := fbapp.NewApp(ctx, &fbapp.Config{ProjectID: cfg.FirebaseProject}, opt)
	if err != nil {
		log.Fatalf("Failed to initialize Firebase: %v", err)
	}

	authClient, err := firebaseApp.Auth(ctx)
	if err != nil {
		log.Fatalf("Failed to initialize Firebase Auth: %v", err)
	}

	firestoreClient, err := firestore.NewClient(ctx, cfg.FirebaseProject, opt)
	if err != nil {
		log.Fatalf("Failed to create Firestore client: %v", err)
	}
	defer firestoreClient.Close()

	// Image stores are optional. Interfaces stay untyped nil when absent.
	var imageRepo domainrepo.ImageRepository
	var mongoClient *mongo.Client
	if cfg.MongoURI != "" {
		mongoClient, err = mongodb.Connect(ctx, cfg.MongoURI)
		if err != nil {
			log.WithError(err).Warn("MongoDB unavailable, images will go to Cloud Storage")
		} else {
			db := mongoClient.Database(cfg.MongoDatabase)
			if err := repository.EnsureImageIndexes(ctx, db); err != nil {
				log.WithError(err).Warn("Failed to create image indexes")
			}
			imageRepo = repository.NewMongoImageRepository(db)
		}
	}
	defer mongodb.Disconnect(mongoClient)

	var objects usecase.ObjectStore
	if cfg.StorageBucket != "" {
		storageClient, err := storage.NewCloudStorageClient(ctx, cfg.StorageBucket, opt)
		if err != nil {
			log.WithError(err).Warn("Cloud Storage unavailable")
		} else {
			defer storageClient.Close()
			objects = storageClient
		}
	}

	policy := retry.Default
	policy.MaxElapsed = cfg.StoreRetryMaxElapsed

	userRepo := repository.NewFirestoreUserRepository(firestoreClient, policy)
	roomRepo := repository.NewFirestoreChatRoomRepository(firestoreClient, policy)
	messageRepo := repository.NewFirestoreMessageRepository(firestoreClient, policy)
	notificationRepo := repository.NewFirestoreNotificationRepository(firestoreClient, policy)
	produceRepo := repository.NewFirestoreProduceRepository(firestoreClient, policy)

	dispatcher := outbox.NewDispatcher(outbox.Options{
		Workers:     cfg.DispatchWorkers,
		QueueSize:   cfg.DispatchQueueSize,
		TaskTimeout: cfg.DispatchTaskTimeout,
		Retry:       policy,
	})
	dispatcher.Start()

	limiter := ratelimit.NewRateLimiter(ratelimit.DefaultRules)
	stopCleanup := make(chan struct{})
	limiter.StartCleanupRoutine(stopCleanup)

	fanOut := usecase.NewFanOut(userRepo, roomRepo, notificationRepo)
	imageUseCase := usecase.NewImageUseCase(imageRepo, objects)
	chatUseCase := usecase.NewChatUseCase(roomRepo, messageRepo, userRepo, fanOut, dispatcher, limiter)
	notificationUseCase := usecase.NewNotificationUseCase(notificationRepo)
	produceUseCase := usecase.NewProduceUseCase(produceRepo, userRepo, fanOut, imageUseCase, dispatcher)
	userUseCase := usecase.NewUserUseCase(userRepo)

	handler.Setup(chatUseCase, notificationUseCase, produceUseCase, imageUseCase, userUseCase)
	handler.SetupHealthHandler(serviceName)

	verifiers := []firebase.TokenVerifier{firebase.NewFirebaseAuthClient(authClient)}
	if cfg.IsDevelopment() {
		devTokens := firebase.NewDevTokenIssuer(cfg.JWTSecret, cfg.JWTTTL())
		handler.SetupDevTokenHandler(devTokens)
		verifiers = append(verifiers, devTokens)
	}

	e := echo.New()
	e.HideBanner = true

	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())

	e.Validator = api.NewValidator()

	authMiddleware := apimiddleware.NewAuthMiddleware(verifiers...)
	roleMiddleware := apimiddleware.NewRoleMiddleware(userRepo)

	router.Setup(e, authMiddleware, roleMiddleware, limiter)
	router.SetupDevRouter(e, cfg.Environment)

	go func() {
		log.Infof("Starting %s on port %s (%s)", serviceName, cfg.ServerPort, cfg.Environment)
		if err := e.Start(":" + cfg.ServerPort); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server stopped: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("HTTP shutdown failed")
	}
	close(stopCleanup)
	if err := dispatcher.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Warn("Pending notifications were abandoned")
	}
}
