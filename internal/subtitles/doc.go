// Package subtitles models timed subtitle segments and renders them to and from
// SubRip (SRT) text.
//
// Rendering can layer two extra lines under each cue: tone-marked pinyin for
// Chinese text and a translation, each wrapped in a <font> tag carrying its own
// colour and size. Chinese cues also get their ASCII punctuation converted to
// full-width forms. Decoding keeps only the first text line of each cue, so
// rendering followed by decoding recovers the original segments.
package subtitles
