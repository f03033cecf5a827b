// Package contentcache stores JSON results on disk under a key derived from the
// SHA-256 of their canonicalised input parameters.
//
// Files are named {type}_{key}.json inside a single directory. A missing,
// unreadable, or malformed file is a miss, never an error, so a corrupted
// entry simply costs one recomputation. Writes go through a temp file and a
// rename. There is no cross-process locking: two writers racing on the same
// key leave whichever rename lands last.
package contentcache
