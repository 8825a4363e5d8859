// Package events carries the engine's domain events to external
// observers and indexers.
//
// Every successful mutating call emits exactly one event, after all
// validation for that call has passed; failed or rolled-back calls emit
// nothing. The dispatcher fans each event out to its sinks synchronously
// so emission ordering matches call ordering; sink failures are logged
// and never propagate into the triggering call.
//
// Two sinks ship with the package: Recorder, a bounded in-memory journal
// suitable for tests and polling indexers, and LogSink, which writes each
// event as a structured log line.
package events
