package profiling

import (
	"strings"
	"testing"
	"time"
)

func TestRingKeepsNewestSamples(t *testing.T) {
	d := New(3)
	for i := 1; i <= 5; i++ {
		d.Record(Meshing, time.Duration(i)*time.Millisecond)
	}
	got := d.Samples(Meshing)
	want := []time.Duration{3 * time.Millisecond, 4 * time.Millisecond, 5 * time.Millisecond}
	if len(got) != len(want) {
		t.Fatalf("got %d samples, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("sample %d = %v, want %v", i, got[i], want[i])
		}
	}
	if avg := d.Average(Meshing); avg != 4*time.Millisecond {
		t.Fatalf("average = %v, want 4ms", avg)
	}
}

func TestTopNOrdersByDuration(t *testing.T) {
	d := New(8)
	d.Record(Building, 2*time.Millisecond)
	d.Record(Meshing, 5*time.Millisecond)
	d.Record(ApplyMesh, 1500*time.Microsecond)

	got := d.TopN(2)
	if got != "meshing:5ms, building:2ms" {
		t.Fatalf("TopN = %q", got)
	}
	d.ResetFrame()
	if d.TopN(5) != "" {
		t.Fatalf("totals survived ResetFrame")
	}
	if len(d.Samples(Building)) != 1 {
		t.Fatalf("ResetFrame must not drop ring samples")
	}
}

func TestTrackRecords(t *testing.T) {
	d := New(0)
	stop := d.Track(Structures)
	stop()
	if len(d.Samples(Structures)) != 1 {
		t.Fatalf("Track did not record a sample")
	}
	var nilSink *Diagnostics
	nilSink.Record(Structures, time.Second)
}

func TestFormatMs(t *testing.T) {
	if got := formatMs(1.5); !strings.HasPrefix(got, "1.5") {
		t.Fatalf("formatMs(1.5) = %q", got)
	}
	if got := formatMs(-0); got != "0ms" {
		t.Fatalf("formatMs(0) = %q", got)
	}
}
