package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/crypto/bcrypt"

	"github.com/prakharxagrawal/deployment-portal-angular/internal/adapters/httpapi"
	"github.com/prakharxagrawal/deployment-portal-angular/internal/adapters/memoryrepo"
	"github.com/prakharxagrawal/deployment-portal-angular/internal/adapters/pgrepo"
	"github.com/prakharxagrawal/deployment-portal-angular/internal/application"
	"github.com/prakharxagrawal/deployment-portal-angular/internal/domain"
	"github.com/prakharxagrawal/deployment-portal-angular/platform/config"
	"github.com/prakharxagrawal/deployment-portal-angular/platform/observability"
	"github.com/prakharxagrawal/deployment-portal-angular/platform/tracing"
)

func main() {
	logger, err := observability.NewLogger()
	if err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	defer func() {
		_ = logger.Sync()
	}()

	// Inicializar tracing global para el servicio.
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	shutdownTracing, err := tracing.InitTracing(ctx, "deployment-portal-api")
	if err != nil {
		log.Printf("failed to initialize tracing: %v", err)
	} else {
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = shutdownTracing(shutdownCtx)
		}()
	}

	// Registrar métricas globales HTTP
	observability.InitMetrics()

	var (
		deploymentRepo application.DeploymentRepository = memoryrepo.NewDeploymentRepository()
		releaseRepo    application.ReleaseRepository    = memoryrepo.NewReleaseRepository()
	)

	dsn := config.Get("DATABASE_URL", "")
	if dsn != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		pool, err := pgxpool.New(ctx, dsn)
		if err != nil {
			log.Printf("failed to create pgx pool, using in-memory repositories: %v", err)
		} else {
			if err := pool.Ping(ctx); err != nil {
				log.Printf("failed to ping Postgres, using in-memory repositories: %v", err)
				pool.Close()
			} else {
				log.Printf("using Postgres-backed deployment and release repositories")
				deploymentRepo = pgrepo.NewDeploymentRepository(pool)
				releaseRepo = pgrepo.NewReleaseRepository(pool)
			}
		}
	}

	serviceRepo := memoryrepo.NewServiceRepository()
	userRepo := memoryrepo.NewUserRepository()
	sessionStore := memoryrepo.NewSessionStore()

	seedCatalog(serviceRepo)
	seedUsers(userRepo)

	services := &application.Services{
		Deployments: deploymentRepo,
		Releases:    releaseRepo,
		Catalog:     serviceRepo,
		Users:       userRepo,
		Sessions:    sessionStore,
	}

	server := httpapi.NewServer(services, logger)
	handler := server.Routes()

	srv := &http.Server{
		Addr:         ":8080",
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	log.Println("deployment-portal-api listening on :8080")
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Printf("server error: %v", err)
	}
}

// seedCatalog carga el catálogo de servicios usado por el autocomplete.
func seedCatalog(repo *memoryrepo.ServiceRepository) {
	names := []string{
		"account-service", "billing-service", "customer-gateway",
		"inventory-service", "notification-service", "order-service",
		"payment-service", "reporting-service",
	}
	ctx := context.Background()
	for _, name := range names {
		_ = repo.Save(ctx, &domain.Service{ID: uuid.NewString(), Name: name})
	}
}

// seedUsers crea los usuarios iniciales. Las passwords salen de env vars
// para no fijarlas en el binario; sin env var el usuario no se crea.
func seedUsers(repo *memoryrepo.UserRepository) {
	seeds := []struct {
		username string
		role     domain.Role
		envVar   string
	}{
		{"alice", domain.RoleDeveloper, "SEED_DEVELOPER_PASSWORD"},
		{"bob", domain.RoleAdmin, "SEED_ADMIN_PASSWORD"},
		{"carol", domain.RoleSuperAdmin, "SEED_SUPERADMIN_PASSWORD"},
	}

	ctx := context.Background()
	for _, seed := range seeds {
		password, ok := config.Require(seed.envVar)
		if !ok {
			log.Printf("skipping seed user %s: %s not set", seed.username, seed.envVar)
			continue
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
		if err != nil {
			log.Printf("failed to hash password for %s: %v", seed.username, err)
			continue
		}
		_ = repo.Save(ctx, &domain.User{
			Username:     seed.username,
			Role:         seed.role,
			PasswordHash: string(hash),
		})
	}
}
