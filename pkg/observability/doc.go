/*
Package observability turns graph lifecycle hooks into logs and metrics.

LogHooks writes node executions and wiring changes to a slog.Logger.
Metrics exports Prometheus counters and histograms for the same events.
Both return domain.LifecycleHooks and compose with LifecycleHooks.Merge.
*/
package observability
