// Package app provides application initialization and lifecycle management
// for the TabScan server. It wires configuration, logging, observability,
// the dataset and scan services, the WebSocket hub and the HTTP router
// into a single runnable unit.
//
// # Architecture
//
// The app package follows a dependency injection pattern where all
// components are wired together at startup. Services receive their
// collaborators (hub, metric instruments, remote loaders) through
// With* builder methods, which keeps them usable in isolation in tests.
//
// # Initialization Flow
//
// The typical initialization sequence:
//
//	1. Load configuration from environment and files
//	2. Initialize logging and OpenTelemetry
//	3. Resolve and create the data directories
//	4. Initialize services with their dependencies
//	5. Set up HTTP handlers and middleware
//	6. Configure the HTTP server
//
// # Usage
//
// The main entry point is typically:
//
//	app, err := app.NewApplication()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := app.Run(); err != nil {
//	    log.Fatal(err)
//	}
//
// # Graceful Shutdown
//
// The package handles SIGINT and SIGTERM signals to ensure:
//
//	- Active requests are completed
//	- WebSocket connections are closed cleanly
//	- The system metrics collector stops
//	- OpenTelemetry providers flush and shut down
//
// # Remote Sources
//
// The URL fetcher is always attached to the dataset service. The Google
// Sheets loader is attached only when a credentials file is present;
// without it the server runs normally and Sheets loads fail with a
// configuration error.
//
// # Error Handling
//
// All initialization errors are returned to the caller for proper
// handling. The app does not call os.Exit() directly, allowing the
// main function to control the exit process.
package app
