// Package testutil provides deterministic fixtures shared by package tests:
// a fluent board builder, fixed input generators, and fixed run ids and
// sequence numbers for store and harness tests.
package testutil
