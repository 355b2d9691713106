// Package broadcast implements the real-time broadcast hub using the actor pattern.
//
// A single goroutine owns the channel registry and processes register, unregister
// and broadcast commands in order, so the registry needs no mutex and is never
// touched by the document store. Each channel has its own writer goroutine with a
// bounded buffer; a slow or failed peer is pruned without delaying the others.
package broadcast
