// Package server exposes the engine over JSON-RPC 2.0.
//
// Each request's method is a dispatcher action name and its params the
// action's parameter object; the response carries the handler payload
// or the error message string. Bus events are forwarded to the client
// as one-way notifications whose method is the event's topic string.
// The canonical transport is stdio, the editor frontend holding the
// other end of the pipe.
package server
