// Package ffprobe wraps ffprobe's JSON output.
//
// Probe runs ffprobe and returns the parsed Result; Duration is the shortcut
// the encoder uses to size a black background to the audio track.
package ffprobe
