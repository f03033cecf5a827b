package deps

// MediaRequirements lists the binaries used by the encoder, the duration
// probe, and font discovery.
func MediaRequirements(ffmpeg, ffprobe string) []Requirement {
	if ffmpeg == "" {
		ffmpeg = "ffmpeg"
	}
	if ffprobe == "" {
		ffprobe = "ffprobe"
	}
	return []Requirement{
		{Name: "FFmpeg", Command: ffmpeg, Description: "Encodes the output video and burns subtitles", VersionFlag: "-version"},
		{Name: "FFprobe", Command: ffprobe, Description: "Measures audio duration for plain backgrounds", VersionFlag: "-version"},
		{Name: "fc-match", Command: "fc-match", Description: "Finds a CJK-capable subtitle font", Optional: true},
	}
}
