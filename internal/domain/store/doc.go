/*
Package store is the versioned builder state registry.

It owns two ordered canvases of placed component instances and is the
only writer of that state: all mutation goes through Add, Update,
Remove, Select, Undo, Redo, Clear, and Replace, each synchronous and
atomic relative to subscribers. Reads hand out deep copies.

History is a pair of bounded stacks of full-state snapshots. Every
mutation snapshots the prior state; the undo stack evicts its oldest
entry past the bound, and any mutation after an undo clears the redo
stack (linear history).

Subscribers receive one event per mutation over a buffered channel;
delivery never blocks a mutation.
*/
package store
