// ABOUTME: Tests for the resampling cursor and oto reader
// ABOUTME: Verifies interpolation, looping, seeking and byte output
package backend

import (
	"encoding/binary"
	"io"
	"math"
	"testing"
	"time"

	"github.com/Resonate-Protocol/voicemix/pkg/audio"
)

func rampPCM(rate, frames int) *audio.PCM {
	samples := make([]int32, frames)
	for i := range samples {
		samples[i] = audio.SampleFromFloat(float64(i) / float64(frames))
	}
	return &audio.PCM{SampleRate: rate, Channels: 1, Samples: samples}
}

func TestCursorSameRate(t *testing.T) {
	pcm := rampPCM(1000, 4)
	c := newCursor(pcm, 1000)

	var got []float64
	for {
		l, r, ok := c.next()
		if !ok {
			break
		}
		if l != r {
			t.Fatalf("mono source should duplicate channels: %f != %f", l, r)
		}
		got = append(got, l)
	}

	if len(got) != 4 {
		t.Fatalf("expected 4 frames, got %d", len(got))
	}
	if math.Abs(got[2]-0.5) > 1e-3 {
		t.Errorf("expected frame 2 = 0.5, got %f", got[2])
	}
}

func TestCursorUpsampleInterpolates(t *testing.T) {
	pcm := rampPCM(1000, 4)
	c := newCursor(pcm, 2000)

	_, _, _ = c.next()
	mid, _, ok := c.next()
	if !ok {
		t.Fatal("cursor ended early")
	}
	if math.Abs(mid-0.125) > 1e-3 {
		t.Errorf("expected interpolated 0.125, got %f", mid)
	}
}

func TestCursorPitch(t *testing.T) {
	pcm := rampPCM(1000, 8)
	c := newCursor(pcm, 1000)
	c.setPitch(2)

	n := 0
	for {
		if _, _, ok := c.next(); !ok {
			break
		}
		n++
	}
	if n != 4 {
		t.Errorf("double pitch should halve frames, got %d", n)
	}
}

func TestCursorLoop(t *testing.T) {
	pcm := rampPCM(1000, 4)
	c := newCursor(pcm, 1000)
	c.setLoop(true)

	for i := 0; i < 10; i++ {
		if _, _, ok := c.next(); !ok {
			t.Fatalf("looping cursor ended at frame %d", i)
		}
	}
}

func TestCursorSeekAndOffset(t *testing.T) {
	pcm := rampPCM(1000, 1000)
	c := newCursor(pcm, 1000)

	c.seek(250 * time.Millisecond)
	if got := c.offset(); got != 250*time.Millisecond {
		t.Errorf("expected offset 250ms, got %v", got)
	}

	c.seek(5 * time.Second)
	if got := c.offset(); got != time.Second {
		t.Errorf("expected clamp to 1s, got %v", got)
	}
}

func TestPanGains(t *testing.T) {
	l, r := panGains(0)
	if l != 1 || r != 1 {
		t.Errorf("center pan should be unity, got %f %f", l, r)
	}
	l, r = panGains(1)
	if l != 0 || r != 1 {
		t.Errorf("full right pan: got %f %f", l, r)
	}
}

func TestOtoReaderRead(t *testing.T) {
	pcm := &audio.PCM{
		SampleRate: 1000,
		Channels:   2,
		Samples:    []int32{audio.SampleFromInt16(1000), audio.SampleFromInt16(-1000)},
	}
	r := &otoReader{cur: newCursor(pcm, 1000), channels: 2}

	buf := make([]byte, 16)
	n, err := r.Read(buf)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 4 {
		t.Fatalf("expected 4 bytes, got %d", n)
	}

	left := int16(binary.LittleEndian.Uint16(buf[0:]))
	right := int16(binary.LittleEndian.Uint16(buf[2:]))
	if left != 1000 || right != -1000 {
		t.Errorf("expected 1000/-1000, got %d/%d", left, right)
	}

	if _, err := r.Read(buf); err != io.EOF {
		t.Errorf("expected io.EOF at end, got %v", err)
	}
}

func TestOtoReaderSeek(t *testing.T) {
	pcm := rampPCM(1000, 1000)
	r := &otoReader{cur: newCursor(pcm, 1000), channels: 2}

	if _, err := r.Seek(400, io.SeekStart); err != nil {
		t.Fatalf("seek failed: %v", err)
	}
	if got := r.cur.offset(); got != 100*time.Millisecond {
		t.Errorf("expected offset 100ms, got %v", got)
	}

	if _, err := r.Seek(0, io.SeekCurrent); err != nil {
		t.Errorf("zero relative seek should succeed: %v", err)
	}
	if _, err := r.Seek(4, io.SeekCurrent); err == nil {
		t.Error("expected error for relative seek")
	}
	if _, err := r.Seek(0, io.SeekEnd); err == nil {
		t.Error("expected error for SeekEnd")
	}
}
