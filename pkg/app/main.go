package app

import (
	"github.com/gorilla/sessions"

	"github.com/ghuser/brigade/pkg/cache"
	"github.com/ghuser/brigade/pkg/config"
	"github.com/ghuser/brigade/pkg/database"
	"github.com/ghuser/brigade/pkg/events"
	"github.com/ghuser/brigade/pkg/logger"
	"github.com/ghuser/brigade/pkg/workflows"
)

// Application holds the shared infrastructure handed to every bounded context
// when its routes, subscribers or workflows are registered.
//
// Logger is trace-aware: use the Context methods inside requests and handlers
// so trace_id, span_id and request_id are attached.
//
//	app.Logger.InfoContext(ctx, "stock assigned", "item_id", id)
//
// Redis, TemporalClient and SessionStore may be nil depending on the process.
type Application struct {
	Config         *config.Config
	Db             *database.Database
	Logger         logger.Logger
	EventBus       *events.EventBus
	Redis          *cache.RedisClient
	TemporalClient *workflows.TemporalClient
	SessionStore   sessions.Store
}
