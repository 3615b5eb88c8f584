// Package internal contains the core implementation packages for weft.
//
// The packages are organized by functional domain:
//
//   - config: configuration loading, validation, and allow-list defaults
//   - dom: helpers over golang.org/x/net/html node trees
//   - engine: directive processing, bindings, lifecycle, update queue
//   - errors: structured error taxonomy and recoverable-error collection
//   - eval: JavaScript expression evaluation for directive values
//   - events: synthetic event broker with capture/bubble dispatch
//   - logging: structured logging over slog
//   - notify: lifecycle signal bus consumed by the preview server
//   - sanitize: allow-list HTML, style, and URL sanitization
//   - server: preview server with websocket signal streaming
//   - store: template validation, fetching, caching, and invalidation
//   - version: build metadata
package internal
