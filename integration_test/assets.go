package integration_test

import (
	"context"
	"os"
	"testing"

	"github.com/strrl/logslice/integration_test/loghub"
	"github.com/strrl/logslice/pkg/extract"
	"github.com/strrl/logslice/pkg/linesource"
	"github.com/strrl/logslice/pkg/store"
)

// dataset is a Loghub dataset whose timestamps logslice can extract.
type dataset struct {
	name      string
	dateRegex string
}

// Datasets without a year in their timestamps (Linux, Mac, OpenSSH,
// Proxifier) or with compact formats (HDFS, HealthApp, Spark) are left out.
var datasets = []dataset{
	{"Apache", `^\[(\w{3} \w{3} \d{2} \d{2}:\d{2}:\d{2} \d{4})\]`},
	{"BGL", `^\S+ (\d{10}) `},
	{"Hadoop", `^(\d{4}-\d{2}-\d{2} \d{2}:\d{2}:\d{2},\d{3})`},
	{"HPC", `^\S+ \S+ \S+ \S+ (\d{10}) `},
	{"OpenStack", ` (\d{4}-\d{2}-\d{2} \d{2}:\d{2}:\d{2}\.\d{3}) `},
	{"Thunderbird", `^\S+ (\d{10}) `},
	{"Zookeeper", `^(\d{4}-\d{2}-\d{2} \d{2}:\d{2}:\d{2},\d{3})`},
}

// loghubPath returns the LOGHUB_PATH env var or skips the test.
func loghubPath(t *testing.T) string {
	t.Helper()
	p := os.Getenv("LOGHUB_PATH")
	if p == "" {
		t.Skip("LOGHUB_PATH not set, skipping integration test")
	}
	return p
}

// openDataset opens the raw log of ds with cleanup registered.
func openDataset(t *testing.T, base string, ds dataset) *linesource.File {
	t.Helper()
	src, err := linesource.Open(loghub.RawPath(base, ds.name))
	if err != nil {
		t.Fatalf("open dataset: %v", err)
	}
	t.Cleanup(func() { _ = src.Close() })
	return src
}

// dateMatcher compiles the dataset's date regex.
func dateMatcher(t *testing.T, ds dataset) extract.Matcher {
	t.Helper()
	m, err := extract.NewRegexp(ds.dateRegex)
	if err != nil {
		t.Fatalf("compile date regex: %v", err)
	}
	return m
}

// newStore creates a fresh in-memory DuckDB store with cleanup registered.
func newStore(t *testing.T) *store.DuckDBStore {
	t.Helper()
	s, err := store.NewDuckDBStore("")
	if err != nil {
		t.Fatalf("create store: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })

	if err := s.Init(context.Background()); err != nil {
		t.Fatalf("init store: %v", err)
	}
	return s
}
