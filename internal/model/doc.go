// Package model holds the wire-level event record shared by the buffer,
// transport, and public client facade.
package model
