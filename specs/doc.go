// Package specs defines the input and output records of a dimensional-modeling
// run: the raw schema of the source tables, the target business metrics, and
// the dimensional model (fact and dimension tables) proposed for them.
//
// Canonical shape:
//   - Table.columns is an ordered mapping of column name to column type.
//     Declaration order from the input file is kept when re-serialized.
//   - Column types use the short spellings: str, int, float, bool, date, datetime.
//
// Records validate themselves on decode and are never mutated after load.
package specs
