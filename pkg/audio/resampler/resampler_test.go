package resampler

import (
	"bytes"
	"io"
	"testing"
)

func TestTo16kMonoPassthrough(t *testing.T) {
	data := []byte{1, 0, 2, 0, 3, 0, 4, 0}
	r, err := To16kMono(bytes.NewReader(data), PipelineFormat)
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()

	out, err := readAll(r)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(out, data) {
		t.Errorf("passthrough altered data: got %v, want %v", out, data)
	}
}

func TestTo16kMonoDownmix(t *testing.T) {
	// Two stereo frames at 16 kHz: (100, 200) and (40, 60).
	src := []byte{100, 0, 200, 0, 40, 0, 60, 0}
	r, err := To16kMono(bytes.NewReader(src), Format{SampleRate: 16000, Stereo: true})
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()

	out, err := readAll(r)
	if err != nil {
		t.Fatal(err)
	}
	want := []byte{150, 0, 50, 0} // averaged channels
	if !bytes.Equal(out, want) {
		t.Errorf("downmix = %v, want %v", out, want)
	}
}

func TestTo16kMonoDownsampleRate(t *testing.T) {
	// One second of 48 kHz mono silence should come out near one second
	// of 16 kHz mono.
	src := make([]byte, 48000*2)
	r, err := To16kMono(bytes.NewReader(src), Format{SampleRate: 48000, Stereo: false})
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()

	out, err := readAll(r)
	if err != nil {
		t.Fatal(err)
	}
	got := len(out) / 2
	if got < 15000 || got > 17000 {
		t.Errorf("downsampled to %d samples, want about 16000", got)
	}
}

func TestReadAfterClose(t *testing.T) {
	r, err := To16kMono(bytes.NewReader(nil), PipelineFormat)
	if err != nil {
		t.Fatal(err)
	}
	r.Close()
	if _, err := r.Read(make([]byte, 4)); err == nil {
		t.Error("expected error after Close")
	}
}

func readAll(r io.Reader) ([]byte, error) {
	var out []byte
	buf := make([]byte, 1024)
	for {
		n, err := r.Read(buf)
		out = append(out, buf[:n]...)
		if err == io.EOF {
			return out, nil
		}
		if err != nil {
			return out, err
		}
	}
}
