// Package api provides the HTTP surface of the newswire engine.
//
// The surface is a thin JSON layer over engine.Client:
//
//	GET|POST /news           one result per source, background mode by default
//	POST     /news/refresh   force-queue sources, answers 202
//	GET      /news/queue     background task counts
//	GET      /sources        registered sources with rules and owners
//	GET      /archives       daily markdown archives, newest first
//	GET      /archives/{n}   one archive as text/markdown
//	POST     /archives/trigger
//	GET      /healthz
//
// Every JSON response is wrapped as { "ok", "status", "data" } or
// { "ok", "status", "error" }.
//
// Clients may only name registered sources unless APIConfig.Sources allows
// unregistered ones.
package api
