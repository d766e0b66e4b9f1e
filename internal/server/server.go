package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"adminlite/internal/config"
	"adminlite/internal/handlers"
	"adminlite/internal/middlewares"
	"adminlite/internal/routes"
	"adminlite/internal/services"
	"adminlite/internal/utils"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// Services are the shared application services behind the HTTP API.
type Services struct {
	Schemas    *services.SchemaService
	Records    *services.RecordService
	Options    *services.ForeignKeyService
	Forms      *services.FormBuilder
	Workspaces *services.WorkspaceService
}

// NewServices wires the services around store.
func NewServices(cfg *config.Config, store services.Store, log logrus.FieldLogger) (*Services, error) {
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}

	schemas := services.NewSchemaService(store, log.WithField("component", "schema"), cfg.Schema.Concurrency)
	records := services.NewRecordService(store, log.WithField("component", "records"))
	options := services.NewForeignKeyService(store, log.WithField("component", "options"), cfg.Options.Limit)
	forms := services.NewFormBuilder(loc)
	workspaces := services.NewWorkspaceService(schemas, records, options, forms,
		log.WithField("component", "workspace"), cfg.Rows.Limit, cfg.Workspace.IdleTTL)

	return &Services{
		Schemas:    schemas,
		Records:    records,
		Options:    options,
		Forms:      forms,
		Workspaces: workspaces,
	}, nil
}

// NewRouter builds the gin engine with middleware and all routes.
func NewRouter(cfg *config.Config, svc *Services, log logrus.FieldLogger) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middlewares.RequestLogger(log))
	router.Use(cors.New(corsConfig(cfg.Server.AllowedOrigins)))

	routes.RegisterRoutes(router, routes.Handlers{
		Auth:      handlers.NewAuthHandler(),
		Schema:    handlers.NewSchemaHandler(svc.Schemas, svc.Options),
		Record:    handlers.NewRecordHandler(svc.Schemas, svc.Records, svc.Options, svc.Forms, cfg.Rows.Limit),
		Workspace: handlers.NewWorkspaceHandler(svc.Workspaces),
	}, []byte(cfg.Auth.JWTSecret))

	return router
}

// NewServer creates the HTTP server for the admin API. Idle workspaces are
// expired in the background until ctx is done.
func NewServer(ctx context.Context, cfg *config.Config, store services.Store, log *logrus.Logger) (*http.Server, error) {
	if log.IsLevelEnabled(logrus.DebugLevel) {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	svc, err := NewServices(cfg, store, log)
	if err != nil {
		return nil, err
	}

	go svc.Workspaces.RunExpiry(ctx, cfg.Workspace.SweepInterval)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      NewRouter(cfg, svc, log),
		IdleTimeout:  time.Minute,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	return server, nil
}

func corsConfig(origins []string) cors.Config {
	c := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders: []string{"Content-Length"},
		MaxAge:        12 * time.Hour,
	}
	if len(origins) == 0 || utils.Contains(origins, "*") {
		c.AllowAllOrigins = true
		return c
	}
	c.AllowOrigins = origins
	c.AllowCredentials = true
	return c
}
