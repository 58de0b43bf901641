package oto

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"

	"github.com/zynmi/mutseq"
	"github.com/zynmi/mutseq/player"
)

// RenderMonitor plays events through a monitor voice offline and returns
// frames of interleaved stereo audio. The events have absolute frames and
// must be sorted.
func RenderMonitor(events []mutseq.NoteEvent, frames int, sampleRate float64, volume float32) []float32 {
	const blockSize = 256
	m := NewMonitor(player.NullContext{}, volume)
	m.Reserve(blockSize)
	buf := make([]float32, 2*frames)
	next := 0
	for pos := 0; pos < frames; pos += blockSize {
		n := min(blockSize, frames-pos)
		for ; next < len(events) && events[next].Frame < pos+n; next++ {
			ev := events[next]
			ev.Frame -= pos
			m.WriteEvent(ev)
		}
		m.Render(buf[2*pos:2*(pos+n)], sampleRate)
	}
	return buf
}

// Wav encodes an interleaved stereo buffer as a .wav file, either as 32-bit
// floats or, with pcm16, as 16-bit signed integers.
func Wav(buffer []float32, sampleRate int, pcm16 bool) ([]byte, error) {
	buf := new(bytes.Buffer)
	wavHeader(len(buffer), sampleRate, pcm16, buf)
	var err error
	if pcm16 {
		data := make([]int16, len(buffer))
		for i, v := range buffer {
			data[i] = int16(mutseq.Clamp(int(v*math.MaxInt16), math.MinInt16, math.MaxInt16))
		}
		err = binary.Write(buf, binary.LittleEndian, data)
	} else {
		err = binary.Write(buf, binary.LittleEndian, buffer)
	}
	if err != nil {
		return nil, fmt.Errorf("could not write the samples: %v", err)
	}
	return buf.Bytes(), nil
}

// wavHeader writes the header of a stereo .wav file holding bufferLength
// samples (L + R), int16 for pcm16 and float32 otherwise.
func wavHeader(bufferLength, sampleRate int, pcm16 bool, buf *bytes.Buffer) {
	// Refer to: http://www-mmsp.ece.mcgill.ca/Documents/AudioFormats/WAVE/WAVE.html
	const numChannels = 2
	bytesPerSample, chunkSize, fmtChunkSize, waveFormat := 4, 50+4*bufferLength, 18, 3 // IEEE float
	if pcm16 {
		bytesPerSample, chunkSize, fmtChunkSize, waveFormat = 2, 36+2*bufferLength, 16, 1 // PCM
	}
	write := func(v any) { binary.Write(buf, binary.LittleEndian, v) }
	buf.WriteString("RIFF")
	write(uint32(chunkSize))
	buf.WriteString("WAVEfmt ")
	write(uint32(fmtChunkSize))
	write(uint16(waveFormat))
	write(uint16(numChannels))
	write(uint32(sampleRate))
	write(uint32(sampleRate * numChannels * bytesPerSample)) // avgBytesPerSec
	write(uint16(numChannels * bytesPerSample))              // blockAlign
	write(uint16(8 * bytesPerSample))                        // bits per sample
	if !pcm16 {
		write(uint16(0)) // size of extension
		buf.WriteString("fact")
		write(uint32(4))
		write(uint32(bufferLength / numChannels)) // sample frames
	}
	buf.WriteString("data")
	write(uint32(bytesPerSample * bufferLength))
}
