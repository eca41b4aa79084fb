package whisper

import (
	"encoding/binary"
	"math"
	"testing"
	"time"
)

func TestPcmToFloat32_Empty(t *testing.T) {
	out := pcmToFloat32(nil)
	if len(out) != 0 {
		t.Fatalf("expected 0 samples, got %d", len(out))
	}
}

func TestPcmToFloat32_FullScale(t *testing.T) {
	tests := []struct {
		name  string
		value int16
		want  float32
	}{
		{"max positive", 32767, 32767.0 / 32768.0},
		{"max negative", -32768, -1.0},
		{"zero", 0, 0.0},
		{"mid positive", 16384, 16384.0 / 32768.0},
		{"mid negative", -16384, -16384.0 / 32768.0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pcm := make([]byte, 2)
			binary.LittleEndian.PutUint16(pcm, uint16(tt.value))
			out := pcmToFloat32(pcm)
			if math.Abs(float64(out[0]-tt.want)) > 1e-6 {
				t.Errorf("pcmToFloat32(%d) = %f; want %f", tt.value, out[0], tt.want)
			}
		})
	}
}

func TestPcmToFloat32Mono_Stereo(t *testing.T) {
	// Two stereo frames: (1000, 3000) and (-2000, 2000).
	values := []int16{1000, 3000, -2000, 2000}
	pcm := make([]byte, len(values)*2)
	for i, v := range values {
		binary.LittleEndian.PutUint16(pcm[i*2:], uint16(v))
	}
	out := pcmToFloat32Mono(pcm, 2)
	if len(out) != 2 {
		t.Fatalf("expected 2 mono samples, got %d", len(out))
	}
	want0 := float32(2000) / 32768.0
	if math.Abs(float64(out[0]-want0)) > 1e-6 {
		t.Errorf("mono[0] = %f; want %f", out[0], want0)
	}
	if math.Abs(float64(out[1])) > 1e-6 {
		t.Errorf("mono[1] = %f; want 0", out[1])
	}
}

func TestComputeRMS(t *testing.T) {
	if rms := computeRMS(nil); rms != 0 {
		t.Errorf("computeRMS(nil) = %f; want 0", rms)
	}

	// Constant amplitude 1000 has RMS 1000.
	values := make([]int16, 100)
	for i := range values {
		values[i] = 1000
	}
	pcm := make([]byte, len(values)*2)
	for i, v := range values {
		binary.LittleEndian.PutUint16(pcm[i*2:], uint16(v))
	}
	if rms := computeRMS(pcm); math.Abs(rms-1000) > 1e-6 {
		t.Errorf("computeRMS = %f; want 1000", rms)
	}
}

func TestPcmDuration(t *testing.T) {
	// 1 second of 16 kHz mono 16-bit audio is 32 000 bytes.
	pcm := make([]byte, 32000)
	if d := pcmDuration(pcm, 16000, 1); d != time.Second {
		t.Errorf("pcmDuration = %v; want 1s", d)
	}
	if d := pcmDuration(pcm, 0, 1); d != 0 {
		t.Errorf("pcmDuration with zero rate = %v; want 0", d)
	}
}
