// Package memory provides in-memory implementations of the driven
// storage ports. Used by tests and as a scratch target for dry runs;
// nothing here survives process exit.
package memory
