// Package preflight provides readiness checks for the filesystem paths and
// external providers Lectio depends on.
//
// The CLI "lectio doctor" command runs RunAll and renders the results; the
// individual checks are exported so callers can run a subset. Checks never
// return errors: every outcome, including a failure to run, is a Result.
package preflight
