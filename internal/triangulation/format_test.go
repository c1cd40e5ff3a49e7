package triangulation

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestSanitizeSSID(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "home-net", "home-net"},
		{"empty", "", ""},
		{"quotes", `say "hi"`, "say .hi."},
		{"control", "a\x00b\tc\nd\x1f", "a.b.c.d."},
		{"del", "x\x7fy", "x.y"},
		{"emoji", "wifi 😱", "wifi ...."},
		{"latin1", "caf\xe9", "caf."},
		{"printable edges", " ~!#", " ~!#"},
		{"backslash kept", `a\b`, `a\b`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SanitizeSSID(tt.in); got != tt.want {
				t.Errorf("SanitizeSSID(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestSanitizeSSID_AllBytes(t *testing.T) {
	all := make([]byte, 256)
	for i := range all {
		all[i] = byte(i)
	}

	got := SanitizeSSID(string(all))
	if len(got) != len(all) {
		t.Fatalf("length changed: got %d, want %d", len(got), len(all))
	}
	for i := 0; i < len(got); i++ {
		in, out := all[i], got[i]
		unsafe := in < 0x20 || in >= 0x7f || in == '"'
		switch {
		case unsafe && out != '.':
			t.Errorf("byte 0x%02x -> 0x%02x, want '.'", in, out)
		case !unsafe && out != in:
			t.Errorf("byte 0x%02x changed to 0x%02x", in, out)
		}
	}

	if again := SanitizeSSID(got); again != got {
		t.Errorf("SanitizeSSID is not idempotent")
	}
}

func TestFormatRecord(t *testing.T) {
	tests := []struct {
		name string
		ap   AccessPoint
		want string
	}{
		{
			name: "secured",
			ap:   sampleAPs[0],
			want: "+CWLAP:(3,\"home-net\",-42,\"a4:2b:b0:11:22:33\",6)\r\n",
		},
		{
			name: "quoted ssid, bssid case preserved",
			ap:   sampleAPs[1],
			want: "+CWLAP:(0,\"Cafe .Free.\",-71,\"F0:9F:C2:AA:BB:CC\",11)\r\n",
		},
		{
			name: "hidden network",
			ap:   sampleAPs[2],
			want: "+CWLAP:(4,\"\",-88,\"00:11:22:33:44:55\",1)\r\n",
		},
		{
			name: "zero value",
			ap:   AccessPoint{},
			want: "+CWLAP:(0,\"\",0,\"\",0)\r\n",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if diff := cmp.Diff(tt.want, FormatRecord(tt.ap)); diff != "" {
				t.Errorf("FormatRecord mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestRecords_OrderAndRestart(t *testing.T) {
	radio := newFakeRadio(sampleAPs...)
	seq := Records(radio, len(sampleAPs))

	var first, second []string
	for rec := range seq {
		first = append(first, rec)
	}
	for rec := range seq {
		second = append(second, rec)
	}

	want := []string{
		FormatRecord(sampleAPs[0]),
		FormatRecord(sampleAPs[1]),
		FormatRecord(sampleAPs[2]),
	}
	if diff := cmp.Diff(want, first); diff != "" {
		t.Errorf("first pass mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("sequence not restartable (-first +second):\n%s", diff)
	}
}

func TestRecords_StopsEarly(t *testing.T) {
	radio := newFakeRadio(sampleAPs...)
	n := 0
	for range Records(radio, len(sampleAPs)) {
		n++
		break
	}
	if n != 1 {
		t.Errorf("iterated %d times after break, want 1", n)
	}
}

func TestBuildBuffer(t *testing.T) {
	for _, n := range []int{0, 1, 3} {
		radio := newFakeRadio(sampleAPs...)
		buf := BuildBuffer(Records(radio, n))

		if !strings.HasSuffix(buf, "\r\n") {
			t.Errorf("n=%d: buffer missing trailing CRLF", n)
		}
		if got := strings.Count(buf, RecordPrefix); got != n {
			t.Errorf("n=%d: %d records, want %d", n, got, n)
		}

		lines := strings.Split(buf, "\r\n")
		// n records, the empty terminator line, and the empty tail after it.
		if len(lines) != n+2 || lines[n] != "" || lines[n+1] != "" {
			t.Errorf("n=%d: unexpected layout %q", n, buf)
		}
		for i := 0; i < n; i++ {
			if want := strings.TrimSuffix(FormatRecord(sampleAPs[i]), "\r\n"); lines[i] != want {
				t.Errorf("n=%d line %d = %q, want %q", n, i, lines[i], want)
			}
		}
	}
}

func TestLogCachedSsids(t *testing.T) {
	rig := newTestRig(sampleAPs...)

	rig.coord.LogCachedSsids()
	if len(rig.sink.lines) != 0 {
		t.Fatalf("expected no output before any scan, got %q", rig.sink.lines)
	}

	if err := rig.coord.UpdateTriangulationData(false, false); err != nil {
		t.Fatalf("UpdateTriangulationData: %v", err)
	}
	sent := len(rig.companion.sent)
	scans := rig.radio.count("scan")
	rig.sink.lines = nil

	rig.coord.LogCachedSsids()

	want := []string{
		FormatRecord(sampleAPs[0]),
		FormatRecord(sampleAPs[1]),
		FormatRecord(sampleAPs[2]),
	}
	if diff := cmp.Diff(want, rig.sink.lines); diff != "" {
		t.Errorf("logged records mismatch (-want +got):\n%s", diff)
	}
	if len(rig.companion.sent) != sent {
		t.Error("LogCachedSsids submitted to the companion")
	}
	if rig.radio.count("scan") != scans {
		t.Error("LogCachedSsids rescanned")
	}
}
