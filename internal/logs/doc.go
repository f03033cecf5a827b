// Package logs reads the JSON run log written under the configured log
// directory.
//
// Last returns the final lines with bounded memory use. Follow streams lines
// appended after an offset until its context ends. Filter narrows lines to a
// single run ID so one invocation can be inspected in isolation.
package logs
