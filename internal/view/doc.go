/*
Package view defines the contract between the browser shell and the
protocol modules that load content.

A View is one loaded resource. The shell only ever talks to it through
Load, the read accessors, Search, and a list of event subscriptions.
Modules do their I/O on their own goroutines and hand every state change
back to the UI goroutine through a Poster, so listeners always run on the
UI goroutine and in the order the load produced them.

# Cancellation

Close detaches every listener and marks the view closed. Any callback a
module posts after that point is dropped, which guarantees that a late
event from a superseded load is never applied to the content that
replaced it.

# Embedding

Modules embed Base, which implements the bookkeeping half of View
(state, progress, listeners, hooks, line search) and leaves Load to the
module.
*/
package view
