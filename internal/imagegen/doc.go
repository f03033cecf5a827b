// Package imagegen generates one illustrative image per subtitle segment.
//
// Work fans out across a bounded errgroup. Each unit waits on the shared
// sliding-window limiter, then runs generate+download under the retry policy.
// Units end in one of three outcomes: success records start->path, a soft
// failure records nothing, and a fatal failure cancels the group and is
// returned. Images are written to a fresh subburn-images-<uuid> directory.
package imagegen
