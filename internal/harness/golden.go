package harness

import (
	"testing"

	"github.com/sebdah/goldie/v2"
)

// AssertTextGolden compares got against testdata/golden/<name>.golden,
// mirroring the teacher's golden.go use of goldie for trace snapshots
// but applied to plain rendered text (e.g. EXPLAIN output) instead of
// a JSON invocation trace.
//
// Run with -update to regenerate a fixture after a deliberate output
// change; that flag is wired by goldie itself, not this package.
func AssertTextGolden(t *testing.T, name string, got string) {
	t.Helper()
	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, name, []byte(got))
}
