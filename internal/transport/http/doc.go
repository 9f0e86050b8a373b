// Package http implements the HTTP handlers of the dashboard server.
//
// Handlers stay thin: they read from the services layer and translate
// results into responses. Failures are returned as errors and rendered as
// RFC 7807 problem details by errors.Handle, so verbosity follows the
// server's debug setting in one place.
//
// Routes served:
//
//	GET  /                  the dashboard page
//	GET  /api/health        basic health
//	GET  /api/health/ready  503 until the page is published
//	GET  /api/health/live   liveness with runtime stats
//	GET  /api/version       build and version information
package http
