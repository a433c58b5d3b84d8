package profiling

import (
	"sort"
	"strings"
	"sync"
	"time"
)

// Sample categories recorded by the generation pipeline.
const (
	Building   = "building"
	Insertion  = "insertion"
	Structures = "structures"
	Meshing    = "meshing"
	ApplyMesh  = "apply-mesh"
)

// DefaultCapacity is the number of samples kept per category when none is given.
const DefaultCapacity = 256

type ring struct {
	samples []time.Duration
	next    int
	full    bool
}

func (r *ring) add(d time.Duration) {
	r.samples[r.next] = d
	r.next++
	if r.next == len(r.samples) {
		r.next = 0
		r.full = true
	}
}

func (r *ring) values() []time.Duration {
	if !r.full {
		out := make([]time.Duration, r.next)
		copy(out, r.samples[:r.next])
		return out
	}
	out := make([]time.Duration, 0, len(r.samples))
	out = append(out, r.samples[r.next:]...)
	return append(out, r.samples[:r.next]...)
}

// Diagnostics keeps the most recent timing samples per category in bounded ring
// buffers, plus per-tick totals for slow-tick reports. It is observational only.
type Diagnostics struct {
	mu          sync.Mutex
	capacity    int
	rings       map[string]*ring
	frameTotals map[string]time.Duration
}

// New returns a sink keeping up to capacity samples per category.
func New(capacity int) *Diagnostics {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Diagnostics{
		capacity:    capacity,
		rings:       make(map[string]*ring),
		frameTotals: make(map[string]time.Duration),
	}
}

// Track returns a stop function that records the elapsed time under the given name.
// Usage: defer diag.Track(profiling.Meshing)()
func (d *Diagnostics) Track(name string) func() {
	start := time.Now()
	return func() {
		d.Record(name, time.Since(start))
	}
}

// Record adds one sample. A nil sink drops it.
func (d *Diagnostics) Record(name string, dur time.Duration) {
	if d == nil {
		return
	}
	d.mu.Lock()
	r, ok := d.rings[name]
	if !ok {
		r = &ring{samples: make([]time.Duration, d.capacity)}
		d.rings[name] = r
	}
	r.add(dur)
	d.frameTotals[name] += dur
	d.mu.Unlock()
}

// Samples returns the retained samples of a category, oldest first.
func (d *Diagnostics) Samples(name string) []time.Duration {
	d.mu.Lock()
	defer d.mu.Unlock()
	r, ok := d.rings[name]
	if !ok {
		return nil
	}
	return r.values()
}

// Average returns the mean of the retained samples of a category.
func (d *Diagnostics) Average(name string) time.Duration {
	s := d.Samples(name)
	if len(s) == 0 {
		return 0
	}
	var sum time.Duration
	for _, v := range s {
		sum += v
	}
	return sum / time.Duration(len(s))
}

// ResetFrame clears current per-tick totals. Call at the start of each tick.
func (d *Diagnostics) ResetFrame() {
	d.mu.Lock()
	for k := range d.frameTotals {
		delete(d.frameTotals, k)
	}
	d.mu.Unlock()
}

// TopN formats top N durations from the current tick totals.
// Example: "meshing:4.2ms, building:2.1ms"
func (d *Diagnostics) TopN(n int) string {
	d.mu.Lock()
	type pair struct {
		name string
		dur  time.Duration
	}
	list := make([]pair, 0, len(d.frameTotals))
	for k, v := range d.frameTotals {
		list = append(list, pair{name: k, dur: v})
	}
	d.mu.Unlock()

	sort.Slice(list, func(i, j int) bool { return list[i].dur > list[j].dur })
	if n > len(list) {
		n = len(list)
	}
	parts := make([]string, 0, n)
	for i := 0; i < n; i++ {
		ms := float64(list[i].dur.Microseconds()) / 1000.0
		parts = append(parts, list[i].name+":"+formatMs(ms))
	}
	return strings.Join(parts, ", ")
}

func formatMs(ms float64) string {
	return trimTrailingZerosF(ms) + "ms"
}

// trimTrailingZerosF formats with one decimal place and drops ".0".
func trimTrailingZerosF(f float64) string {
	whole := int64(f)
	frac := int64((f-float64(whole))*10.0 + 0.0001)
	if frac <= 0 {
		return itoa(whole)
	}
	return itoa(whole) + "." + itoa(frac)
}

func itoa(i int64) string {
	if i == 0 {
		return "0"
	}
	neg := false
	if i < 0 {
		neg = true
		i = -i
	}
	buf := make([]byte, 0, 20)
	for i > 0 {
		d := i % 10
		buf = append(buf, byte('0'+d))
		i /= 10
	}
	for l, r := 0, len(buf)-1; l < r; l, r = l+1, r-1 {
		buf[l], buf[r] = buf[r], buf[l]
	}
	if neg {
		return "-" + string(buf)
	}
	return string(buf)
}
