// Package application provides application initialization and dependency wiring.
// It encapsulates loading the lesson catalog and creating storage, planner,
// handlers, routers, and HTTP server instances, making the main packages
// cleaner and more focused on CLI parsing and orchestration.
package application
