// Package observability holds the engine's Prometheus metrics.
//
// The engine only records; it exposes no scrape surface of its own. Hosts
// that want exposition mount promhttp over the registry returned by
// Metrics.Registry.
package observability
