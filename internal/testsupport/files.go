package testsupport

import (
	"os"
	"path/filepath"
	"testing"
)

// TwoBlockSRT is a minimal two-cue Chinese subtitle file.
const TwoBlockSRT = "1\n00:00:00,000 --> 00:00:02,000\n你好\n\n2\n00:00:02,000 --> 00:00:04,000\n世界\n"

// WriteFile fills the target path with the requested number of bytes using a
// simple repeating pattern. A size <= 0 writes a single byte.
func WriteFile(t testing.TB, path string, size int64) {
	t.Helper()

	if size <= 0 {
		size = 1
	}
	data := make([]byte, size)
	for i := range data {
		data[i] = 0x42
	}
	WriteBytes(t, path, data)
}

// WriteBytes writes data to path, creating parent directories.
func WriteBytes(t testing.TB, path string, data []byte) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

// WriteSRT writes content to name inside dir and returns the path.
func WriteSRT(t testing.TB, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	WriteBytes(t, path, []byte(content))
	return path
}

// MP3Header is enough of an MPEG audio file for MIME sniffing.
func MP3Header() []byte {
	return append([]byte("ID3\x03\x00\x00\x00\x00\x00\x00"), make([]byte, 64)...)
}

// PNGHeader is enough of a PNG for MIME sniffing.
func PNGHeader() []byte {
	return append([]byte("\x89PNG\r\n\x1a\n"), make([]byte, 32)...)
}

// MP4Header is enough of an ISO BMFF file for MIME sniffing.
func MP4Header() []byte {
	box := []byte{0x00, 0x00, 0x00, 0x18, 'f', 't', 'y', 'p', 'i', 's', 'o', 'm', 0x00, 0x00, 0x02, 0x00, 'i', 's', 'o', 'm', 'm', 'p', '4', '1'}
	return append(box, make([]byte, 32)...)
}
