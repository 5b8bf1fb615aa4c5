// Package core contains the fetch, extract and cache logic of the newswire engine.
// It has no HTTP surface of its own; api/ and cmd/ sit on top of engine/, which
// wires these packages together.
//
// The core package is organized into several sub-packages:
//
//   - domain: FetchResult, Link, Article, RuleSet, Task and QueueStatus
//   - errors: typed errors (HTTP status, not found, validation)
//   - interfaces: contracts for caches, the HTTP transport, the logger and services
//   - registry: source URLs, per-domain rule sets and publication owners
//   - fetch: retrying, rate-limited page fetcher
//   - extract: HTML and feed extraction into titles, links and articles
//   - cache: two-tier result cache with a freshness window
//   - workers: background task queue with a concurrency cap
//   - news: orchestrator for background and synchronous modes
//   - archive: daily markdown snapshots
//   - scheduler: cron jobs for refresh and archive
//
// All external dependencies are injected through core/interfaces, so every
// package is testable with hand-written mocks.
package core
