package main

import (
	"context"
	"log"
	"os"
	"strings"

	"github.com/example/task-approval/config"
	notificationdomain "github.com/example/task-approval/domain/notification"
	projectdomain "github.com/example/task-approval/domain/project"
	taskdomain "github.com/example/task-approval/domain/task"
	userdomain "github.com/example/task-approval/domain/user"
	"github.com/example/task-approval/modules/api"
	"github.com/example/task-approval/modules/auth"
	"github.com/example/task-approval/modules/cache"
	"github.com/example/task-approval/modules/database"
	"github.com/example/task-approval/modules/notification"
	"github.com/example/task-approval/modules/project"
	"github.com/example/task-approval/modules/task"
	gfshutdown "github.com/gelmium/graceful-shutdown"
	"github.com/go-monolith/mono"
	fsjetstream "github.com/go-monolith/mono/plugin/fs-jetstream"
)

func main() {
	cfg, err := config.Load(os.Args[1:])
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	log.Println("=== Task Approval Service ===")
	log.Printf("HTTP Port: %d", cfg.HTTPPort)
	log.Printf("Database: %s", cfg.DBDriver)
	log.Printf("Storage Path: %s", cfg.StorageDir)

	app, err := mono.NewMonoApplication(
		mono.WithShutdownTimeout(cfg.ShutdownTimeout),
		mono.WithLogLevel(parseLogLevel(cfg.LogLevel)),
		mono.WithLogFormat(mono.LogFormatText),
		mono.WithJetStreamStorageDir(cfg.StorageDir),
	)
	if err != nil {
		log.Fatalf("Failed to create mono application: %v", err)
	}

	// Plugins start before modules and are injected by alias.
	dbPlugin := database.NewPluginModule(database.Config{
		Driver: cfg.DBDriver,
		Path:   cfg.DBPath,
		URL:    cfg.DatabaseURL,
		Debug:  cfg.DBDebug,
	},
		&userdomain.User{},
		&projectdomain.Project{},
		&projectdomain.Member{},
		&taskdomain.Task{},
		&taskdomain.Audit{},
		&notificationdomain.Notification{},
	)
	if err := app.RegisterPlugin(dbPlugin, "database"); err != nil {
		log.Fatalf("Failed to register database plugin: %v", err)
	}

	storagePlugin, err := fsjetstream.New(fsjetstream.Config{
		Buckets: []fsjetstream.BucketConfig{
			{
				Name:        task.AttachmentBucket,
				Description: "Task attachments",
				MaxBytes:    1024 * 1024 * 1024,
				Storage:     fsjetstream.FileStorage,
				Compression: true,
			},
		},
	})
	if err != nil {
		log.Fatalf("Failed to create storage plugin: %v", err)
	}
	if err := app.RegisterPlugin(storagePlugin, "storage"); err != nil {
		log.Fatalf("Failed to register storage plugin: %v", err)
	}

	if cfg.RedisAddr != "" {
		cachePlugin := cache.NewPluginModule(cfg.RedisAddr, "task-approval:", cfg.CacheTTL)
		if err := app.RegisterPlugin(cachePlugin, "cache"); err != nil {
			log.Fatalf("Failed to register cache plugin: %v", err)
		}
	} else {
		log.Println("Redis not configured: caching, distributed locks and shared rate limits disabled")
	}

	authModule := auth.NewModule(auth.Config{
		JWT: auth.JWTConfig{
			SecretKey:           cfg.JWTSecretKey,
			AccessTokenDuration: cfg.AccessTokenTTL,
			Issuer:              cfg.JWTIssuer,
		},
		AdminEmail:    cfg.AdminEmail,
		AdminPassword: cfg.AdminPassword,
	})
	projectModule := project.NewModule()
	taskModule := task.NewModule(task.Config{
		ReconcileInterval: cfg.ReconcileInterval,
		MaxUploadSize:     cfg.MaxUploadSize,
	}, app.Logger())
	notificationModule := notification.NewModule()
	apiModule := api.NewModule(api.Config{
		Port:            cfg.HTTPPort,
		RateLimitMax:    cfg.RateLimitMax,
		RateLimitWindow: cfg.RateLimitWindow,
		MaxUploadSize:   cfg.MaxUploadSize,
	})

	// Uploads are handed to the task module in-process; multipart bodies
	// can exceed the message bus payload limit.
	apiModule.SetAttachmentUploader(taskModule)

	app.Register(authModule)
	app.Register(projectModule)
	app.Register(taskModule)
	app.Register(notificationModule)
	app.Register(apiModule)

	if err := app.Start(context.Background()); err != nil {
		log.Fatalf("Failed to start application: %v", err)
	}

	log.Println("=== Application Started ===")
	log.Printf("API available at http://localhost:%d/api/v1", cfg.HTTPPort)
	log.Println("Press Ctrl+C to shutdown")

	wait := gfshutdown.GracefulShutdown(
		context.Background(),
		cfg.ShutdownTimeout,
		map[string]gfshutdown.Operation{
			"mono-app": func(ctx context.Context) error {
				log.Println("Graceful shutdown initiated...")
				return app.Stop(ctx)
			},
		},
	)

	exitCode := <-wait
	log.Printf("Application exited with code: %d", exitCode)
	os.Exit(exitCode)
}

// parseLogLevel maps LOG_LEVEL to the framework level; unknown values log at info.
func parseLogLevel(level string) mono.LogLevel {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return mono.LogLevelDebug
	case "warn", "warning":
		return mono.LogLevelWarn
	case "error":
		return mono.LogLevelError
	default:
		return mono.LogLevelInfo
	}
}
