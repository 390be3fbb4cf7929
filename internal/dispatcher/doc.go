// Package dispatcher routes engine actions to namespace handlers.
//
// Every external operation is a dotted action name ("buffer.open",
// "workspace.list") with a JSON-decoded parameter map. The dispatcher
// resolves the namespace prefix to a registered handler, executes it
// with panic recovery, and returns a typed result. Handlers hold
// narrow interfaces to the engine components; the dispatcher itself
// never touches engine internals.
package dispatcher
