package internaldefs

import (
	"strings"
	"testing"

	goAuthClient "github.com/MrEthical07/goAuthClient"
)

func TestCumulativeBuckets(t *testing.T) {
	got := CumulativeBuckets([]uint64{1, 2, 3})
	want := [BucketCount]uint64{1, 3, 6, 6, 6, 6, 6, 6}
	if got != want {
		t.Fatalf("expected %v, got %v", want, got)
	}

	got = CumulativeBuckets([]uint64{1, 1, 1, 1, 1, 1, 1, 1, 99})
	if got[BucketCount-1] != 8 {
		t.Fatalf("extra buckets must be ignored, got %v", got)
	}
}

func TestDefinitionsUniqueAndComplete(t *testing.T) {
	seenName := map[string]bool{}
	seenID := map[goAuthClient.MetricID]bool{}
	for _, def := range CounterDefs {
		if !strings.HasPrefix(def.Name, "goauth_client_") || !strings.HasSuffix(def.Name, "_total") {
			t.Errorf("counter %q breaks naming convention", def.Name)
		}
		if seenName[def.Name] || seenID[def.ID] {
			t.Errorf("duplicate counter %q", def.Name)
		}
		seenName[def.Name] = true
		seenID[def.ID] = true
	}
	for _, def := range HistogramDefs {
		if seenID[def.ID] {
			t.Errorf("histogram %q reuses a counter id", def.Name)
		}
		seenID[def.ID] = true
	}
	if seenID[goAuthClient.MetricRemoteLatency] != true {
		t.Fatal("remote latency histogram missing")
	}
	if len(seenID) != int(goAuthClient.MetricRemoteLatency)+1 {
		t.Fatalf("expected every metric id defined, got %d", len(seenID))
	}
}
