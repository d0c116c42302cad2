package mediapool

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"fluxcut/internal/timecode"

	"github.com/go-audio/wav"
	"github.com/mewkiz/flac"
	"github.com/tcolgate/mp3"
)

// Seconds assumed for still images placed on the timeline.
const imageDurationSecs = 5.0

// ProbeDurationFrames determines the source duration of a media file in
// frames at the given frame rate. Containers are probed by header where a
// cheap parse exists; images get a fixed display duration.
func (p *Pool) ProbeDurationFrames(path string, fps float64) (int, error) {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".wav":
		secs, err := p.durationWAV(path)
		if err != nil {
			return 0, err
		}
		return timecode.SecondsToFrames(secs, fps), nil
	case ".flac":
		secs, err := p.durationFLAC(path)
		if err != nil {
			return 0, err
		}
		return timecode.SecondsToFrames(secs, fps), nil
	case ".mp3":
		secs, err := p.durationMP3(path)
		if err != nil {
			return 0, err
		}
		return timecode.SecondsToFrames(secs, fps), nil
	case ".mp4", ".mov", ".m4a", ".m4v":
		secs, err := p.durationMvhd(path)
		if err != nil {
			return 0, err
		}
		return timecode.SecondsToFrames(secs, fps), nil
	case ".png", ".jpg", ".jpeg", ".gif", ".webp":
		return timecode.SecondsToFrames(imageDurationSecs, fps), nil
	default:
		return 0, fmt.Errorf("unsupported format: %s", ext)
	}
}

// WAV duration from the header plus file size; decoding every sample is
// not worth it for a probe.
func (p *Pool) durationWAV(path string) (float64, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	dec := wav.NewDecoder(f)
	if !dec.IsValidFile() {
		return 0, fmt.Errorf("invalid wav file")
	}
	if dec.SampleRate == 0 || dec.BitDepth == 0 || dec.NumChans == 0 {
		return 0, fmt.Errorf("invalid wav header")
	}

	st, err := f.Stat()
	if err != nil {
		return 0, err
	}
	headerSize := int64(44)
	pcmBytes := st.Size() - headerSize
	if pcmBytes < 0 {
		pcmBytes = 0
	}
	bytesPerSampleFrame := int64(dec.BitDepth/8) * int64(dec.NumChans)
	if bytesPerSampleFrame <= 0 {
		return 0, fmt.Errorf("invalid sample frame size")
	}
	sampleFrames := pcmBytes / bytesPerSampleFrame
	return float64(sampleFrames) / float64(dec.SampleRate), nil
}

// FLAC duration via the STREAMINFO metadata block.
func (p *Pool) durationFLAC(path string) (float64, error) {
	stream, err := flac.ParseFile(path)
	if err != nil {
		return 0, err
	}
	si := stream.Info
	if si.NSamples > 0 && si.SampleRate > 0 {
		return float64(si.NSamples) / float64(si.SampleRate), nil
	}
	return 0, fmt.Errorf("flac stream missing sample info")
}

// MP3 duration by walking frames; a partial decode uses what it got.
func (p *Pool) durationMP3(path string) (float64, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	dec := mp3.NewDecoder(f)
	var total time.Duration
	var skipped int
	frames := 0
	for {
		var fr mp3.Frame
		if err := dec.Decode(&fr, &skipped); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			if frames == 0 {
				return 0, fmt.Errorf("could not decode any mp3 frames: %w", err)
			}
			break
		}
		total += fr.Duration()
		frames++
	}
	return total.Seconds(), nil
}

// MP4-family duration from the mvhd atom's timescale and duration. A
// manual atom scan keeps the probe dependency-free; best-effort.
func (p *Pool) durationMvhd(path string) (float64, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	for {
		head := make([]byte, 8)
		if _, err := io.ReadFull(f, head); err != nil {
			return 0, err
		}
		size := binary.BigEndian.Uint32(head[0:4])
		atom := string(head[4:8])
		if size < 8 {
			return 0, fmt.Errorf("invalid atom size")
		}
		if atom == "moov" {
			limit := int64(size) - 8
			for read := int64(0); read < limit; {
				subHead := make([]byte, 8)
				if _, err := io.ReadFull(f, subHead); err != nil {
					return 0, err
				}
				subSize := binary.BigEndian.Uint32(subHead[0:4])
				subAtom := string(subHead[4:8])
				if subAtom == "mvhd" {
					return readMvhd(f)
				}
				if subSize < 8 {
					return 0, fmt.Errorf("invalid sub-atom size")
				}
				if _, err := f.Seek(int64(subSize)-8, io.SeekCurrent); err != nil {
					return 0, err
				}
				read += int64(subSize)
			}
			break
		}
		if _, err := f.Seek(int64(size)-8, io.SeekCurrent); err != nil {
			return 0, err
		}
	}
	return 0, fmt.Errorf("mvhd atom not found")
}

func readMvhd(f *os.File) (float64, error) {
	version := make([]byte, 1)
	if _, err := io.ReadFull(f, version); err != nil {
		return 0, err
	}
	var skip int64
	if version[0] == 1 { // 64-bit creation/modification times
		skip = 3 + 8 + 8
	} else {
		skip = 3 + 4 + 4
	}
	if _, err := f.Seek(skip, io.SeekCurrent); err != nil {
		return 0, err
	}
	tsBuf := make([]byte, 4)
	if _, err := io.ReadFull(f, tsBuf); err != nil {
		return 0, err
	}
	timescale := binary.BigEndian.Uint32(tsBuf)
	if timescale == 0 {
		return 0, fmt.Errorf("invalid timescale")
	}
	if version[0] == 1 { // 64-bit duration
		durBuf := make([]byte, 8)
		if _, err := io.ReadFull(f, durBuf); err != nil {
			return 0, err
		}
		return float64(binary.BigEndian.Uint64(durBuf)) / float64(timescale), nil
	}
	durBuf := make([]byte, 4)
	if _, err := io.ReadFull(f, durBuf); err != nil {
		return 0, err
	}
	return float64(binary.BigEndian.Uint32(durBuf)) / float64(timescale), nil
}
