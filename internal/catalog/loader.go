package catalog

import (
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/dhowden/tag"
	"github.com/faiface/beep"
	"github.com/faiface/beep/flac"
	"github.com/faiface/beep/mp3"
	"github.com/faiface/beep/wav"
	"github.com/rs/zerolog/log"

	pkgerrors "pcmdeck/pkg/errors"
)

// SupportedFormats returns the file extensions the loader accepts.
func SupportedFormats() []string {
	return []string{".wav", ".mp3", ".flac"}
}

// IsSupported checks whether a file can be loaded as a track asset.
func IsSupported(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, format := range SupportedFormats() {
		if ext == format {
			return true
		}
	}
	return false
}

// Load builds tracks from the audio files in dir, in lexical filename order.
// Files are fully decoded to raw 16-bit little-endian mono PCM here, at
// catalog build time; the playback path only ever sees flat byte slices.
// Assets whose sample rate differs from sampleRate are skipped with a warning
// (the feed path does no resampling). A missing directory yields no tracks
// and no error.
func Load(dir string, sampleRate int) ([]Track, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, &pkgerrors.LoadError{Path: dir, Err: err}
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() && IsSupported(e.Name()) {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	var tracks []Track
	for _, name := range names {
		path := filepath.Join(dir, name)
		pcm, err := loadPCM(path, sampleRate)
		if err != nil {
			log.Warn().Err(err).Str("path", path).Msg("Skipping asset")
			continue
		}
		tracks = append(tracks, Track{
			Title: readTitle(path),
			PCM:   pcm,
		})
	}
	return tracks, nil
}

// loadPCM decodes one asset into mono 16-bit little-endian PCM bytes.
func loadPCM(path string, sampleRate int) ([]byte, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, &pkgerrors.LoadError{Path: path, Err: err}
	}

	streamer, format, err := decode(file, path)
	if err != nil {
		file.Close()
		return nil, &pkgerrors.LoadError{Path: path, Err: err}
	}
	defer streamer.Close()

	if int(format.SampleRate) != sampleRate {
		return nil, &pkgerrors.LoadError{
			Path: path,
			Err: fmt.Errorf("%w: asset is %d Hz, output is %d Hz",
				pkgerrors.ErrSampleRateMismatch, format.SampleRate, sampleRate),
		}
	}

	return drainToPCM(streamer), nil
}

// decode picks a decoder based on the file extension.
func decode(r io.ReadSeekCloser, path string) (beep.StreamSeekCloser, beep.Format, error) {
	ext := strings.ToLower(filepath.Ext(path))

	switch ext {
	case ".wav":
		return wav.Decode(r)
	case ".mp3":
		return mp3.Decode(r)
	case ".flac":
		return flac.Decode(r)
	default:
		return nil, beep.Format{}, fmt.Errorf("%w: %s", pkgerrors.ErrInvalidFormat, ext)
	}
}

// drainToPCM pulls the whole stream and downmixes stereo frames to mono by
// averaging the channels.
func drainToPCM(s beep.Streamer) []byte {
	var (
		out   []byte
		frame [512][2]float64
	)
	for {
		n, ok := s.Stream(frame[:])
		for i := 0; i < n; i++ {
			v := (frame[i][0] + frame[i][1]) / 2
			out = appendSample(out, v)
		}
		if !ok {
			return out
		}
	}
}

// appendSample converts one normalized float sample to int16 little-endian.
func appendSample(dst []byte, v float64) []byte {
	v = math.Max(-1, math.Min(1, v))
	s := int16(v * (1<<15 - 1))
	return append(dst, byte(uint16(s)), byte(uint16(s)>>8))
}

// readTitle extracts the title from the asset's metadata tags, falling back
// to the bare file name.
func readTitle(path string) string {
	fallback := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))

	file, err := os.Open(path)
	if err != nil {
		return fallback
	}
	defer file.Close()

	metadata, err := tag.ReadFrom(file)
	if err != nil || metadata.Title() == "" {
		return fallback
	}
	return metadata.Title()
}
