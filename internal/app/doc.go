// Package app wires the dashboard server together and manages its lifecycle.
//
// Startup runs in this order:
//
//	1. Load configuration from defaults, optional YAML file and DASH_* env vars
//	2. Initialize logging and OpenTelemetry
//	3. Load the three datasets and build, render and publish the page
//	4. Bind the listen address (a busy port fails with a BindError)
//	5. Serve until SIGINT or SIGTERM, then shut down gracefully
//
// The page is computed once before serving. Requests only read the
// published bytes.
//
// Usage:
//
//	application, err := app.NewApplication()
//	if err != nil {
//	    return err
//	}
//	return application.Run()
package app
