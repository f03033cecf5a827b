// Package inputs classifies the files given on the command line and derives
// the output path.
package inputs

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"subburn/internal/services"
)

// Kind is the role an input file plays in a burn.
type Kind string

const (
	KindAudio    Kind = "audio"
	KindVideo    Kind = "video"
	KindImage    Kind = "image"
	KindSubtitle Kind = "subtitle"
)

// Files holds at most one file of each kind. Empty means absent.
type Files struct {
	Audio    string
	Video    string
	Image    string
	Subtitle string
}

// Media returns the file that provides the soundtrack: audio, else video.
func (f Files) Media() string {
	if f.Audio != "" {
		return f.Audio
	}
	return f.Video
}

// Classify sniffs path's content and returns its kind. Files that sniff as
// text are accepted as subtitles only with an .srt extension.
func Classify(path string) (Kind, error) {
	mtype, err := mimetype.DetectFile(path)
	if err != nil {
		return "", services.Wrap(services.ErrValidation, "inputs", "classify", path, err)
	}
	for m := mtype; m != nil; m = m.Parent() {
		switch {
		case strings.HasPrefix(m.String(), "audio/"):
			return KindAudio, nil
		case strings.HasPrefix(m.String(), "video/"):
			return KindVideo, nil
		case strings.HasPrefix(m.String(), "image/"):
			return KindImage, nil
		}
	}
	if strings.EqualFold(filepath.Ext(path), ".srt") {
		return KindSubtitle, nil
	}
	return "", services.Wrap(services.ErrValidation, "inputs", "classify",
		fmt.Sprintf("unsupported file type: %s (%s)", path, mtype.String()), nil)
}

// Collect classifies each path. It rejects missing files, unsupported types,
// and two files of the same kind.
func Collect(paths []string) (Files, error) {
	var files Files
	if len(paths) == 0 {
		return files, services.Wrap(services.ErrValidation, "inputs", "collect", "no input files", nil)
	}
	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				return Files{}, services.Wrap(services.ErrValidation, "inputs", "collect", "file not found: "+path, nil)
			}
			return Files{}, services.Wrap(services.ErrValidation, "inputs", "collect", path, err)
		}
		if info.IsDir() {
			return Files{}, services.Wrap(services.ErrValidation, "inputs", "collect", "is a directory: "+path, nil)
		}
		kind, err := Classify(path)
		if err != nil {
			return Files{}, err
		}
		slot := files.slot(kind)
		if *slot != "" {
			return Files{}, services.Wrap(services.ErrValidation, "inputs", "collect",
				fmt.Sprintf("more than one %s file: %s and %s", kind, *slot, path), nil)
		}
		*slot = path
	}
	return files, nil
}

func (f *Files) slot(kind Kind) *string {
	switch kind {
	case KindAudio:
		return &f.Audio
	case KindVideo:
		return &f.Video
	case KindImage:
		return &f.Image
	default:
		return &f.Subtitle
	}
}

// OutputPath returns the video path to write. An empty output yields the
// media file with an .mp4 extension; an existing directory receives that
// base name. An output that resolves to an input file is rejected.
func OutputPath(files Files, output string) (string, error) {
	media := files.Media()
	if media == "" {
		return "", services.Wrap(services.ErrValidation, "inputs", "output path", "no audio or video file found", nil)
	}
	derived := strings.TrimSuffix(media, filepath.Ext(media)) + ".mp4"

	target := output
	switch {
	case strings.TrimSpace(output) == "":
		target = derived
	default:
		if info, err := os.Stat(output); err == nil && info.IsDir() {
			target = filepath.Join(output, filepath.Base(derived))
		}
	}

	for _, input := range []string{files.Audio, files.Video} {
		if input != "" && samePath(input, target) {
			return "", services.Wrap(services.ErrValidation, "inputs", "output path",
				fmt.Sprintf("output file would overwrite input file: %s; pass a different --output", target), nil)
		}
	}
	return target, nil
}

// SubtitleFor returns the sibling .srt path for an audio file.
func SubtitleFor(audio string) string {
	return strings.TrimSuffix(audio, filepath.Ext(audio)) + ".srt"
}

func samePath(a, b string) bool {
	absA, errA := filepath.Abs(a)
	absB, errB := filepath.Abs(b)
	if errA != nil || errB != nil {
		return filepath.Clean(a) == filepath.Clean(b)
	}
	if absA == absB {
		return true
	}
	infoA, errA := os.Stat(absA)
	infoB, errB := os.Stat(absB)
	return errA == nil && errB == nil && os.SameFile(infoA, infoB)
}
