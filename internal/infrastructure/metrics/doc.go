// Package metrics exposes Prometheus instrumentation for the catalog service.
//
// A Metrics value owns its own registry, so tests can build isolated
// instances. The optional Server publishes the registry on a separate
// operator listener; it never shares the public route table.
package metrics
