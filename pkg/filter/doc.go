// Package filter implements the gateway content filter: a table of regular
// expression deny rules compiled once per configuration epoch and evaluated
// against request text before routing.
//
// A match produces a providers.ContentFilteredError carrying the rule name
// and its categories, which the client surface maps to a 403 problem
// response. The filter never inspects responses; it is a request-side gate.
package filter
