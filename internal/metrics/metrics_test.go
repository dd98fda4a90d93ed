package metrics

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/pyhub-apps/pdfdiff-golang/pkg/compare"
	"github.com/pyhub-apps/pdfdiff-golang/pkg/textdiff"
)

func TestBatchRecords(t *testing.T) {
	m := NewBatch()

	m.PairDone("completed", 2*time.Second)
	m.PairDone("completed", time.Second)
	m.PairDone("skipped", 0)
	m.PagesDone(compare.DocumentResult{Pages: []compare.PageResult{
		{Status: compare.StatusCompared, HasDifference: true, DiffPixels: 40, Ops: []textdiff.DiffOp{{Kind: textdiff.Add}, {Kind: textdiff.Remove}}},
		{Status: compare.StatusCompared},
		{Status: compare.StatusIncomparable},
	}})

	if got := testutil.ToFloat64(m.pairsTotal.WithLabelValues("completed")); got != 2 {
		t.Errorf("expected 2 completed pairs, got %v", got)
	}
	if got := testutil.ToFloat64(m.pagesTotal.WithLabelValues("compared", "true")); got != 1 {
		t.Errorf("expected 1 differing page, got %v", got)
	}
	if got := testutil.ToFloat64(m.diffPixels); got != 40 {
		t.Errorf("expected 40 diff pixels, got %v", got)
	}
	if got := testutil.ToFloat64(m.wordOps.WithLabelValues("add")); got != 1 {
		t.Errorf("expected 1 added word, got %v", got)
	}
}

func TestWriteToTextfile(t *testing.T) {
	m := NewBatch()
	m.PairDone("failed", time.Millisecond)

	path := filepath.Join(t.TempDir(), "pdfdiff.prom")
	if err := m.WriteToTextfile(path); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), `pdfdiff_pairs_total{status="failed"} 1`) {
		t.Errorf("metric missing from textfile:\n%s", data)
	}
}
