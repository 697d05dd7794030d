// Package main hosts the lectio CLI entrypoint and command graph.
//
// Most commands open the devotion facade in-process, run one operation and
// render the result either as a terminal view or, with --json, as the same
// payloads the HTTP API serves. "lectio serve" runs the long-lived daemon.
package main
