// Package analytics computes chart-ready summaries over the denormalized
// row set. A Filter is applied once per request; every summary of that
// request is computed independently from the same filtered view, so charts
// displayed together always agree. All summaries sort deterministically.
package analytics
