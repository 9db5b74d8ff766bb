package observability

import (
	"log/slog"

	"github.com/aretw0/nodeweave/pkg/domain"
)

// LogHooks returns lifecycle hooks that log through logger.
// Executions log at debug level, failures at warn.
func LogHooks(logger *slog.Logger) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnNodeExecute: func(e *domain.NodeEvent) {
			logger.Debug("node_execute", "node_id", e.InstanceID, "type", e.TypeID)
		},
		OnNodeResult: func(e *domain.NodeEvent) {
			if e.IsError() {
				logger.Warn("node_failed", "node_id", e.InstanceID, "type", e.TypeID, "error", e.Err)
				return
			}
			logger.Debug("node_result",
				"node_id", e.InstanceID,
				"type", e.TypeID,
				"duration", e.Duration,
				"memoized", e.Memoized,
			)
		},
		OnConnect: func(e *domain.ConnectionEvent) {
			logger.Debug("connect",
				"from", e.FromInstanceID+"."+e.FromOutput,
				"to", e.ToInstanceID+"."+e.ToInput,
			)
		},
		OnDisconnect: func(e *domain.ConnectionEvent) {
			logger.Debug("disconnect",
				"from", e.FromInstanceID+"."+e.FromOutput,
				"to", e.ToInstanceID+"."+e.ToInput,
			)
		},
	}
}
