// Package domain defines the shared tracker document and the types that travel
// between the store, the broadcast hub and the HTTP layer.
//
// Concept-oriented files (document.go, descriptor.go, collaboration.go, event.go, errors.go).
// No locking here: the state package owns the single live Document and only hands out clones.
package domain
