// Package encoding renders the final video with ffmpeg.
//
// A Job picks one of three backgrounds: a slideshow of generated images
// (concat demuxer, each image held until the next segment starts), a single
// static image, or a black colour source sized to the media duration. The
// subtitle file is burned in with the subtitles filter and a force_style
// built from the rendering options. The output is H.264/AAC with faststart.
//
// Encoder.Encode holds an exclusive flock on "<output>.lock" for the duration
// of the ffmpeg run, streams ffmpeg's "time=" progress to the caller, and on
// failure returns the last stderr lines inside an ErrExternalTool error.
package encoding
