package encoding

import (
	"context"
	"os"
	"os/exec"
	"runtime"
	"strings"
	"time"
)

// FallbackFont is used when nothing better is found.
const FallbackFont = "Arial Unicode MS"

type fontCandidate struct {
	Name  string
	Files []string
}

var platformFonts = map[string][]fontCandidate{
	"darwin": {
		{Name: "PingFang SC", Files: []string{"/System/Library/Fonts/PingFang.ttc"}},
		{Name: "Hiragino Sans GB", Files: []string{"/System/Library/Fonts/Hiragino Sans GB.ttc"}},
		{Name: "Arial Unicode MS", Files: []string{"/Library/Fonts/Arial Unicode.ttf", "/System/Library/Fonts/Supplemental/Arial Unicode.ttf"}},
	},
	"windows": {
		{Name: "Microsoft YaHei", Files: []string{`C:\Windows\Fonts\msyh.ttc`}},
		{Name: "SimHei", Files: []string{`C:\Windows\Fonts\simhei.ttf`}},
		{Name: "MingLiU", Files: []string{`C:\Windows\Fonts\mingliu.ttc`}},
	},
	"linux": {
		{Name: "Noto Sans CJK SC", Files: []string{
			"/usr/share/fonts/opentype/noto/NotoSansCJK-Regular.ttc",
			"/usr/share/fonts/noto-cjk/NotoSansCJK-Regular.ttc",
			"/usr/share/fonts/google-noto-cjk/NotoSansCJK-Regular.ttc",
		}},
		{Name: "WenQuanYi Micro Hei", Files: []string{"/usr/share/fonts/truetype/wqy/wqy-microhei.ttc"}},
	},
}

// FontResolver picks a subtitle font that can render CJK text.
type FontResolver struct {
	goos    string
	fcMatch func(ctx context.Context) (string, error)
	exists  func(path string) bool
}

// NewFontResolver returns a resolver for the running platform.
func NewFontResolver() *FontResolver {
	return &FontResolver{
		goos:    runtime.GOOS,
		fcMatch: runFCMatch,
		exists: func(path string) bool {
			_, err := os.Stat(path)
			return err == nil
		},
	}
}

// Resolve returns explicit when set. Otherwise it asks fontconfig for a
// Chinese-capable family, then checks known per-platform font files, then
// falls back to FallbackFont.
func (r *FontResolver) Resolve(ctx context.Context, explicit string) string {
	if name := strings.TrimSpace(explicit); name != "" {
		return name
	}
	if r.fcMatch != nil {
		if name, err := r.fcMatch(ctx); err == nil && strings.TrimSpace(name) != "" {
			return strings.TrimSpace(name)
		}
	}
	for _, candidate := range platformFonts[r.goos] {
		for _, file := range candidate.Files {
			if r.exists(file) {
				return candidate.Name
			}
		}
	}
	return FallbackFont
}

func runFCMatch(ctx context.Context) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	out, err := exec.CommandContext(ctx, "fc-match", "-f", "%{family[0]}", ":lang=zh").Output()
	if err != nil {
		return "", err
	}
	return string(out), nil
}
