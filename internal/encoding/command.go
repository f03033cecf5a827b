package encoding

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"subburn/internal/subtitles"
)

// BuildArgs returns the ffmpeg arguments for job. workDir receives the concat
// list when the job uses a slideshow.
func BuildArgs(job Job, font, workDir string) ([]string, error) {
	job = job.withDefaults()
	subFilter := SubtitlesFilter(job.Subtitle, font, job.Options)
	fit := fmt.Sprintf("scale=%d:%d:force_original_aspect_ratio=decrease,pad=%d:%d:(ow-iw)/2:(oh-ih)/2,setsar=1",
		job.Width, job.Height, job.Width, job.Height)

	args := []string{"-y", "-hide_banner", "-nostdin"}
	switch job.Background() {
	case BackgroundSlideshow:
		list, err := writeConcatList(job.Images, workDir)
		if err != nil {
			return nil, err
		}
		args = append(args,
			"-f", "concat", "-safe", "0", "-i", list,
			"-i", job.Media,
			"-filter_complex", fmt.Sprintf("[0:v]%s,%s[v]", fit, subFilter),
			"-map", "[v]", "-map", "1:a",
		)
	case BackgroundImage:
		args = append(args,
			"-loop", "1", "-i", job.Image,
			"-i", job.Media,
			"-vf", fit+","+subFilter,
			"-map", "0:v", "-map", "1:a",
		)
	default:
		args = append(args,
			"-f", "lavfi",
			"-i", fmt.Sprintf("color=c=black:s=%dx%d:r=%d:d=%s", job.Width, job.Height, colorFrameRate, formatSeconds(job.Duration)),
			"-i", job.Media,
			"-vf", subFilter,
			"-map", "0:v", "-map", "1:a",
		)
	}

	args = append(args,
		"-c:v", "libx264",
		"-preset", job.Preset,
		"-crf", strconv.Itoa(job.CRF),
		"-profile:v", "high",
		"-level:v", "4.0",
		"-pix_fmt", "yuv420p",
		"-movflags", "+faststart",
		"-c:a", "aac",
		"-b:a", job.AudioBitrate,
		"-shortest",
		job.Output,
	)
	return args, nil
}

// SubtitlesFilter builds the subtitles filter with a force_style for the
// original line. Overlay lines carry their own font tags.
func SubtitlesFilter(path, font string, opts subtitles.Options) string {
	size := opts.OriginalFontSize
	if size <= 0 {
		size = subtitles.DefaultOriginalFontSize
	}
	color := opts.OriginalColor
	if color == "" {
		color = subtitles.DefaultOriginalColor
	}
	font = strings.NewReplacer("'", "", ",", " ").Replace(font)
	style := fmt.Sprintf("FontName=%s,FontSize=%d,PrimaryColour=%s,BorderStyle=1,Outline=1,Shadow=1",
		font, size, assColor(color))
	return fmt.Sprintf("subtitles=filename=%s:force_style='%s'", escapeFilterValue(path), style)
}

// assColor converts RRGGBB to the ASS &HAABBGGRR form.
func assColor(rgb string) string {
	rgb = strings.TrimPrefix(strings.ToUpper(strings.TrimSpace(rgb)), "#")
	if len(rgb) != 6 {
		return "&H00FFFFFF"
	}
	return "&H00" + rgb[4:6] + rgb[2:4] + rgb[0:2]
}

var (
	optionEscaper = strings.NewReplacer(`\`, `\\`, `'`, `\'`, `:`, `\:`)
	graphEscaper  = strings.NewReplacer(`\`, `\\`, `'`, `\'`, `[`, `\[`, `]`, `\]`, `,`, `\,`, `;`, `\;`)
)

// escapeFilterValue escapes a filter option value for both the option parser
// and the filtergraph parser.
func escapeFilterValue(value string) string {
	return graphEscaper.Replace(optionEscaper.Replace(value))
}

// writeConcatList writes an ffconcat file that holds each image until the
// next start; the last image is held for lastImageSeconds.
func writeConcatList(images map[float64]string, dir string) (string, error) {
	starts := make([]float64, 0, len(images))
	for start := range images {
		starts = append(starts, start)
	}
	sort.Float64s(starts)

	var b strings.Builder
	b.WriteString("ffconcat version 1.0\n")
	for i, start := range starts {
		duration := lastImageSeconds
		if i < len(starts)-1 {
			duration = starts[i+1] - start
		}
		fmt.Fprintf(&b, "file %s\nduration %s\n", quoteConcatPath(images[start]), formatSeconds(duration))
	}
	// The concat demuxer ignores the final duration unless the file repeats.
	fmt.Fprintf(&b, "file %s\n", quoteConcatPath(images[starts[len(starts)-1]]))

	path := filepath.Join(dir, "image_list.txt")
	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		return "", fmt.Errorf("write concat list: %w", err)
	}
	return path, nil
}

func quoteConcatPath(path string) string {
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	return "'" + strings.ReplaceAll(path, "'", `'\''`) + "'"
}

func formatSeconds(value float64) string {
	return strconv.FormatFloat(value, 'f', 3, 64)
}
