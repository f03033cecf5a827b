// Command subburn burns Chinese subtitles, with optional pinyin and
// translation lines, into a video built from an audio or video file.
//
// Running subburn with media paths is shorthand for `subburn burn`. The
// remaining subcommands render SRT files, inspect the content cache, manage
// configuration, and check the local environment.
package main
