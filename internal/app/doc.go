// Package app wires configuration, logging, observability, the dashboard
// services and the HTTP router into a runnable application.
package app
