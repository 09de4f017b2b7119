package audio

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/gopxl/beep"

	"go-lifeseq/sequencer"
)

func TestNoteFreq(t *testing.T) {
	cases := map[uint8]float64{69: 440, 57: 220, 81: 880, 60: 261.6256}
	for note, want := range cases {
		if got := NoteFreq(note); math.Abs(got-want) > 0.001 {
			t.Errorf("NoteFreq(%d) = %f, want %f", note, got, want)
		}
	}
}

func TestVoiceShape(t *testing.T) {
	rate := beep.SampleRate(44100)
	v := NewVoice(440, 100*time.Millisecond, 5*time.Millisecond, 20*time.Millisecond, 0.5, rate)

	total := rate.N(100 * time.Millisecond)
	samples := make([][2]float64, total+100)
	n, ok := v.Stream(samples)
	if !ok || n != total {
		t.Fatalf("Stream = %d, %v; want %d, true", n, ok, total)
	}
	if samples[0][0] != 0 {
		t.Errorf("first sample %f, want silent attack start", samples[0][0])
	}
	if samples[n-1][0] != 0 {
		t.Errorf("last sample %f, want silent release end", samples[n-1][0])
	}
	peak := 0.0
	for i := 0; i < n; i++ {
		if samples[i][0] != samples[i][1] {
			t.Fatalf("sample %d not mono", i)
		}
		peak = max(peak, math.Abs(samples[i][0]))
	}
	if peak > 0.5+1e-9 || peak < 0.4 {
		t.Errorf("peak = %f, want close to gain 0.5", peak)
	}

	if n, ok := v.Stream(samples); n != 0 || ok {
		t.Errorf("drained voice streamed %d, %v", n, ok)
	}
}

func TestTriggerSchedulesAfterSilence(t *testing.T) {
	s := NewSynth(44100)
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return now }

	if err := s.TriggerAttackRelease("A4", 20*time.Millisecond, now.Add(10*time.Millisecond)); err != nil {
		t.Fatal(err)
	}
	if s.Voices() != 1 {
		t.Fatalf("Voices = %d", s.Voices())
	}

	lead := make([][2]float64, s.rate.N(10*time.Millisecond))
	s.mixer.Stream(lead)
	for i, smp := range lead {
		if smp[0] != 0 {
			t.Fatalf("sample %d = %f before the scheduled time", i, smp[0])
		}
	}

	body := make([][2]float64, s.rate.N(20*time.Millisecond))
	s.mixer.Stream(body)
	loud := 0
	for _, smp := range body {
		if smp[0] != 0 {
			loud++
		}
	}
	if loud < len(body)/2 {
		t.Fatalf("only %d of %d samples sounded", loud, len(body))
	}

	tail := make([][2]float64, 1024)
	s.mixer.Stream(tail)
	s.mixer.Stream(tail)
	if s.Voices() != 0 {
		t.Fatalf("finished voice still mixed: %d", s.Voices())
	}
}

func TestTriggerInThePastPlaysNow(t *testing.T) {
	s := NewSynth(44100)
	now := time.Now()
	s.now = func() time.Time { return now }
	if err := s.TriggerAttackRelease("C4", 50*time.Millisecond, now.Add(-time.Second)); err != nil {
		t.Fatal(err)
	}
	buf := make([][2]float64, s.rate.N(10*time.Millisecond))
	s.mixer.Stream(buf)
	if buf[len(buf)-1][0] == 0 && buf[len(buf)-2][0] == 0 {
		t.Fatal("late note did not start immediately")
	}
}

func TestTriggerRejectsBadPitch(t *testing.T) {
	s := NewSynth(44100)
	err := s.TriggerAttackRelease("Q9", time.Second, s.Now())
	if !errors.Is(err, sequencer.ErrBadPitch) {
		t.Fatalf("err = %v", err)
	}
	if s.Voices() != 0 {
		t.Fatal("bad pitch was queued")
	}
	var _ sequencer.Synth = s
}
