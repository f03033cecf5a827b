// Package translation annotates subtitle segments with translations using a
// single structured chat completion per batch.
//
// Only segments containing CJK ideographs and lacking a translation are sent.
// Results are keyed by their 1-based position in the request and mapped back
// onto the original slice; a missing index fails the whole batch with a
// CoverageError. Successful batches are stored in the content cache under the
// "translation" type, keyed by model parameters plus segment timing and text.
package translation
