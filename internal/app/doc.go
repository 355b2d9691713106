// Package app provides the application service layer.
//
// Every use case mutates the shared document first and only then asks the
// notifier to push the change to the other connected clients. The store and the
// notifier never see each other.
package app
