// Package shared groups helpers used by more than one internal package.
//
// The testutil subpackage provides:
//
//   - a buffered slog handler for asserting on log records
//   - ingest table and CSV file fixtures built around the Flox persons export header
//   - a deterministic clock for timestamped entities
//
// Example usage:
//
//	func TestSomething(t *testing.T) {
//	    logger, handler := testutil.NewTestLogger(t)
//	    table := testutil.Table([]string{"user_id", "email", "groups"},
//	        []string{"1", "a@example.cz", "KURZ A"})
//	    ...
//	}
package shared
