package logging

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"
)

// Fields shown in the line prefix or only at debug level on the console.
var (
	prefixKeys    = map[string]bool{FieldComponent: true, FieldStage: true}
	debugOnlyKeys = map[string]bool{FieldRunID: true, FieldEventType: true}
)

const (
	ansiReset  = "\x1b[0m"
	ansiDim    = "\x1b[2m"
	ansiRed    = "\x1b[31m"
	ansiYellow = "\x1b[33m"
	ansiCyan   = "\x1b[36m"
)

// consoleHandler writes one line per record:
//
//	15:04:05.000 WARN  [imagegen] images: image skipped segment_index=3 error="..."
type consoleHandler struct {
	mu        *sync.Mutex
	writer    io.Writer
	level     *slog.LevelVar
	attrs     []kv
	group     string
	addSource bool
	color     bool
}

func newConsoleHandler(w io.Writer, lvl *slog.LevelVar, addSource, color bool) slog.Handler {
	return &consoleHandler{mu: &sync.Mutex{}, writer: w, level: lvl, addSource: addSource, color: color}
}

func (h *consoleHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

func (h *consoleHandler) Handle(_ context.Context, record slog.Record) error {
	fields := make([]kv, 0, len(h.attrs)+record.NumAttrs())
	fields = append(fields, h.attrs...)
	record.Attrs(func(attr slog.Attr) bool {
		fields = appendAttr(fields, h.group, attr)
		return true
	})
	fields = lastWins(fields)

	var component, stage string
	debug := record.Level < slog.LevelInfo
	body := fields[:0:0]
	for _, f := range fields {
		switch {
		case f.key == FieldComponent:
			component = attrString(f.value)
		case f.key == FieldStage:
			stage = attrString(f.value)
		case debugOnlyKeys[f.key] && !debug:
		default:
			body = append(body, f)
		}
	}

	ts := record.Time
	if ts.IsZero() {
		ts = time.Now()
	}

	var buf bytes.Buffer
	h.paint(&buf, ansiDim, formatTimestamp(ts))
	buf.WriteByte(' ')
	h.paint(&buf, levelColor(record.Level), levelLabel(record.Level))
	if component != "" {
		buf.WriteString(" [" + component + "]")
	}
	buf.WriteByte(' ')
	if stage != "" {
		buf.WriteString(stage + ": ")
	}
	buf.WriteString(strings.TrimSpace(record.Message))
	for _, f := range body {
		buf.WriteByte(' ')
		h.paint(&buf, ansiCyan, f.key+"=")
		buf.WriteString(formatValue(f.value))
	}
	if h.addSource && record.PC != 0 {
		if src := record.Source(); src != nil && src.File != "" {
			buf.WriteByte(' ')
			h.paint(&buf, ansiDim, filepath.Base(src.File)+":"+strconv.Itoa(src.Line))
		}
	}
	buf.WriteByte('\n')

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := h.writer.Write(buf.Bytes())
	return err
}

func (h *consoleHandler) paint(buf *bytes.Buffer, code, text string) {
	if !h.color || code == "" {
		buf.WriteString(text)
		return
	}
	buf.WriteString(code)
	buf.WriteString(text)
	buf.WriteString(ansiReset)
}

func (h *consoleHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	next := *h
	next.attrs = append([]kv(nil), h.attrs...)
	for _, attr := range attrs {
		next.attrs = appendAttr(next.attrs, h.group, attr)
	}
	return &next
}

func (h *consoleHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	next := *h
	next.group = joinKey(h.group, name)
	return &next
}

type kv struct {
	key   string
	value slog.Value
}

func appendAttr(dst []kv, group string, attr slog.Attr) []kv {
	if attr.Equal(slog.Attr{}) {
		return dst
	}
	value := attr.Value.Resolve()
	if value.Kind() == slog.KindGroup {
		for _, inner := range value.Group() {
			dst = appendAttr(dst, joinKey(group, attr.Key), inner)
		}
		return dst
	}
	return append(dst, kv{key: joinKey(group, attr.Key), value: value})
}

func joinKey(group, key string) string {
	switch {
	case group == "":
		return key
	case key == "":
		return group
	default:
		return group + "." + key
	}
}

// lastWins drops earlier duplicates of a key while keeping first-seen order.
func lastWins(fields []kv) []kv {
	index := make(map[string]int, len(fields))
	out := make([]kv, 0, len(fields))
	for _, f := range fields {
		if f.key == "" {
			continue
		}
		if i, ok := index[f.key]; ok {
			out[i].value = f.value
			continue
		}
		index[f.key] = len(out)
		out = append(out, f)
	}
	return out
}

func levelLabel(level slog.Level) string {
	switch {
	case level >= slog.LevelError:
		return "ERROR"
	case level >= slog.LevelWarn:
		return "WARN "
	case level >= slog.LevelInfo:
		return "INFO "
	default:
		return "DEBUG"
	}
}

func levelColor(level slog.Level) string {
	switch {
	case level >= slog.LevelError:
		return ansiRed
	case level >= slog.LevelWarn:
		return ansiYellow
	default:
		return ""
	}
}
