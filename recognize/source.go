package recognize

import (
	"bytes"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"os"
)

// FrameSource delivers captured frames. Snapshot returns io.EOF once the
// source is exhausted.
type FrameSource interface {
	Snapshot() (image.Image, error)
}

// FileSource replays image files as frames, in order.
type FileSource struct {
	paths []string
	next  int
}

func NewFileSource(paths ...string) *FileSource {
	return &FileSource{paths: paths}
}

func (s *FileSource) Snapshot() (image.Image, error) {
	if s.next >= len(s.paths) {
		return nil, io.EOF
	}
	path := s.paths[s.next]
	s.next++
	return LoadImage(path)
}

// Current is the path of the frame last returned by Snapshot.
func (s *FileSource) Current() string {
	if s.next == 0 {
		return ""
	}
	return s.paths[s.next-1]
}

func LoadImage(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", path, err)
	}
	return img, nil
}

// DecodeImage decodes a PNG or JPEG held in memory.
func DecodeImage(data []byte) (image.Image, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	return img, err
}
