// Package ws streams builder state events to WebSocket clients.
package ws
