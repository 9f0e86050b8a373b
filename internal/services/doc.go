// Package services implements the business logic behind the HTTP handlers.
//
// PageService stores the dashboard document rendered at startup and hands
// the same bytes to every request. HealthService reports version, uptime
// and whether that document has been published.
//
// Services never touch http.ResponseWriter; handlers translate their
// results and errors into responses.
package services
