// Package retry runs a unit of remote work under a bounded exponential backoff
// and reports the result as a typed outcome.
//
// Outcomes are Success, SoftFailure (the unit produced nothing and the caller
// should carry on with its siblings), or Fatal (the whole run must stop).
// Classification relies on the error markers in internal/services plus the
// transport-level heuristics in IsRetriable.
package retry
