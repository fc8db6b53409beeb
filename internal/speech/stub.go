package speech

import (
	"context"
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const (
	stubWordsPerMinute = 150.0

	wavSampleRate    = 44100
	wavNumChannels   = 1
	wavBitsPerSample = 16
	wavHeaderSize    = 44
	wavSubchunkSize  = 16
	wavAudioFormat   = 1
)

// StubSynthesizer writes silent WAV files to a local directory, sized
// to match a plausible narration pace. Useful for dry runs without
// cloud credentials.
type StubSynthesizer struct {
	dir string
}

func NewStubSynthesizer(dir string) *StubSynthesizer {
	return &StubSynthesizer{dir: dir}
}

func (s *StubSynthesizer) Synthesize(_ context.Context, text, id string) (string, error) {
	duration := float64(len(strings.Fields(text))) / stubWordsPerMinute * 60.0

	path := filepath.Join(s.dir, "audio", id+".wav")
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("failed to create audio directory: %w", err)
	}
	if err := os.WriteFile(path, silentWAV(duration), 0o644); err != nil {
		return "", fmt.Errorf("failed to write audio file: %w", err)
	}

	return "file://" + path, nil
}

func silentWAV(durationSec float64) []byte {
	bytesPerSample := wavBitsPerSample / 8
	numSamples := int(durationSec * float64(wavSampleRate))
	dataSize := numSamples * wavNumChannels * bytesPerSample
	byteRate := wavSampleRate * wavNumChannels * bytesPerSample
	blockAlign := wavNumChannels * bytesPerSample

	buf := make([]byte, wavHeaderSize+dataSize)

	copy(buf[0:4], "RIFF")
	binary.LittleEndian.PutUint32(buf[4:8], uint32(wavHeaderSize-8+dataSize))
	copy(buf[8:12], "WAVE")

	copy(buf[12:16], "fmt ")
	binary.LittleEndian.PutUint32(buf[16:20], wavSubchunkSize)
	binary.LittleEndian.PutUint16(buf[20:22], wavAudioFormat)
	binary.LittleEndian.PutUint16(buf[22:24], wavNumChannels)
	binary.LittleEndian.PutUint32(buf[24:28], wavSampleRate)
	binary.LittleEndian.PutUint32(buf[28:32], uint32(byteRate))
	binary.LittleEndian.PutUint16(buf[32:34], uint16(blockAlign))
	binary.LittleEndian.PutUint16(buf[34:36], wavBitsPerSample)

	copy(buf[36:40], "data")
	binary.LittleEndian.PutUint32(buf[40:44], uint32(dataSize))

	return buf
}
