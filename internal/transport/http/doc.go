// Package http implements the HTTP handlers of the dashboard API. Handlers
// stay thin: parse and validate the filter, call the service layer, render
// JSON. Errors render as RFC 7807 problem documents through the shared
// error handler.
package http
