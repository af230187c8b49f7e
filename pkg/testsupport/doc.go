// Package testsupport collects helpers shared by package tests: writers that
// fail on demand, golden file helpers and an HTML parse check for rendered
// output.
package testsupport
