package encoding

import (
	"errors"
	"fmt"
	"strings"

	"subburn/internal/subtitles"
)

// Background identifies how the video track is produced.
type Background int

const (
	BackgroundColor Background = iota
	BackgroundImage
	BackgroundSlideshow
)

func (b Background) String() string {
	switch b {
	case BackgroundSlideshow:
		return "slideshow"
	case BackgroundImage:
		return "image"
	default:
		return "color"
	}
}

const (
	DefaultPreset       = "medium"
	DefaultCRF          = 23
	DefaultAudioBitrate = "192k"
	DefaultWidth        = 1024
	DefaultHeight       = 1024
	lastImageSeconds    = 5.0
	colorFrameRate      = 25
)

// Job describes one encode.
type Job struct {
	Output   string
	Media    string
	Subtitle string
	Options  subtitles.Options
	// Image is a static background used when Images is empty.
	Image string
	// Images maps segment start seconds to generated image paths.
	Images       map[float64]string
	Duration     float64
	Width        int
	Height       int
	Preset       string
	CRF          int
	AudioBitrate string
}

// Background reports which background the job will use.
func (j Job) Background() Background {
	switch {
	case len(j.Images) > 0:
		return BackgroundSlideshow
	case strings.TrimSpace(j.Image) != "":
		return BackgroundImage
	default:
		return BackgroundColor
	}
}

func (j Job) withDefaults() Job {
	if j.Width <= 0 {
		j.Width = DefaultWidth
	}
	if j.Height <= 0 {
		j.Height = DefaultHeight
	}
	if strings.TrimSpace(j.Preset) == "" {
		j.Preset = DefaultPreset
	}
	if j.CRF <= 0 {
		j.CRF = DefaultCRF
	}
	if strings.TrimSpace(j.AudioBitrate) == "" {
		j.AudioBitrate = DefaultAudioBitrate
	}
	return j
}

// Validate checks the fields every background needs.
func (j Job) Validate() error {
	var errs []error
	if strings.TrimSpace(j.Output) == "" {
		errs = append(errs, errors.New("output path is required"))
	}
	if strings.TrimSpace(j.Media) == "" {
		errs = append(errs, errors.New("audio or video input is required"))
	}
	if strings.TrimSpace(j.Subtitle) == "" {
		errs = append(errs, errors.New("subtitle file is required"))
	}
	if j.Background() == BackgroundColor && j.Duration <= 0 {
		errs = append(errs, fmt.Errorf("duration must be positive for a colour background, got %v", j.Duration))
	}
	return errors.Join(errs...)
}
