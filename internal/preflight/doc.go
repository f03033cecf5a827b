// Package preflight provides readiness checks for the binaries, directories,
// and API credentials a burn run depends on.
//
// The CLI "subburn doctor" command renders RunAll as a table. The burn
// command calls CheckSystemDeps before starting so a missing ffmpeg fails
// before any paid API call is made.
package preflight
