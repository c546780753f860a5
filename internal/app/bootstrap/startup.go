// internal/app/bootstrap/startup.go
package bootstrap

import (
	"context"

	"github.com/dalemusser/waffle/config"
	"github.com/lumenlabs/profilehub/internal/app/store/oauthstate"
	"go.uber.org/zap"
)

// Startup runs one-time application initialization after DB connections and
// schema setup are complete, but before the HTTP handler is built.
//
// The TTL index on oauth_states reaps abandoned login attempts, but Mongo's
// TTL monitor only runs every 60 seconds; a sweep here clears out whatever
// accumulated while the service was down.
func Startup(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	removed, err := oauthstate.New(deps.MongoDatabase).CleanupExpired(ctx)
	if err != nil {
		logger.Warn("failed to sweep expired OAuth states", zap.Error(err))
		return nil
	}
	if removed > 0 {
		logger.Info("swept expired OAuth states", zap.Int64("removed", removed))
	}
	return nil
}
