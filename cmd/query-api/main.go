// The query-api serves the dashboard's telemetry read queries, executing
// them through Athena with a Redis result cache in front.
package main

import (
	"context"
	"log"
	"net/http"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/athena"
	"github.com/aws/aws-sdk-go-v2/service/glue"
	"github.com/rs/cors"

	"biorreator-telemetry/internal/cache"
	"biorreator-telemetry/internal/catalog"
	"biorreator-telemetry/internal/config"
	"biorreator-telemetry/internal/controller"
	"biorreator-telemetry/internal/middleware"
	"biorreator-telemetry/internal/repository"
	"biorreator-telemetry/internal/routes"
	"biorreator-telemetry/internal/service"
)

func main() {
	ctx := context.Background()

	cfg, err := config.LoadQueryAPIConfig()
	if err != nil {
		log.Fatalf("Error loading configuration: %v", err)
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		log.Fatalf("Error loading AWS configuration: %v", err)
	}

	table := catalog.SensorTable(cfg.TableLocation)
	if cfg.RegisterTable {
		if err := catalog.Register(ctx, glue.NewFromConfig(awsCfg), table); err != nil {
			log.Fatalf("Error registering catalog table: %v", err)
		}
	}

	var resultCache service.ResultCache
	if cfg.RedisAddr != "" {
		queryCache, err := cache.New(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.CacheTTL)
		if err != nil {
			log.Fatalf("Error initializing Redis: %v", err)
		}
		defer queryCache.Close()
		resultCache = queryCache
	}

	repo := repository.NewAthenaRepository(athena.NewFromConfig(awsCfg), table,
		cfg.Workgroup, cfg.OutputLocation)
	dataService := service.NewDataService(repo, resultCache, table, nil)
	telemetryController := controller.NewTelemetryController(dataService)

	authMiddleware, err := middleware.EnsureValidToken(cfg.AuthIssuerURL, cfg.AuthAudience)
	if err != nil {
		log.Fatalf("Error setting up auth middleware: %v", err)
	}

	router := routes.SetupRouter(telemetryController, authMiddleware)

	c := cors.New(cors.Options{
		AllowedOrigins:   []string{cfg.AllowedOrigin},
		AllowedMethods:   []string{"GET"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
	})
	handler := c.Handler(router)

	log.Printf("Server is running on port %s...", cfg.Port)
	if err := http.ListenAndServe(":"+cfg.Port, handler); err != nil {
		log.Fatal("Error starting server:", err)
	}
}
