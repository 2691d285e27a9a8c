package observability

import (
	"log/slog"

	"github.com/couchcryptid/nivo-observations/internal/config"
	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
)

// ServiceName tags every log line emitted by the service.
const ServiceName = "nivo-observations"

// NewLogger builds the service logger from LOG_FORMAT (json|text) and LOG_LEVEL.
func NewLogger(cfg *config.Config) *slog.Logger {
	return sharedobs.NewLogger(cfg.LogLevel, cfg.LogFormat).With("service", ServiceName)
}
