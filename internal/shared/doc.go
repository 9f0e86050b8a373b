// Package shared holds code used across the dashboard's internal packages
// that belongs to no single layer.
//
// The testutil subpackage captures slog output in tests:
//
//	func TestSomething(t *testing.T) {
//	    logger, logs := testutil.NewTestLogger(t)
//	    run(logger)
//	    testutil.AssertLogContains(t, logs, slog.LevelInfo, "done")
//	}
//
// It must not import other internal packages.
package shared
