// Package usage accounts token consumption per user over a sliding window
// and applies configured budgets.
//
// A Tracker records the usage totals reported by providers, raises a
// token_usage alert when a user crosses their budget, and, for budgets
// marked enforce, rejects further requests until the window slides back
// under the allowance. Events live in a memory store or a SQLite store.
package usage
