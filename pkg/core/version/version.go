// ============================================================================
// paramval - Parametric Value Layer
// ============================================================================
//
// Package:     version
// Description: Central version management for the library and its tools
// Author:      Mike Stoffels
// Created:     2026-09-24
// License:     MIT
// ============================================================================

package version

// Version constants for paramval components
const (
	// Module version
	Module = "0.3.0"

	// Component versions
	CLI       = "0.3.0"
	Evaluator = "0.2.0"
	Store     = "0.1.0"

	// DagJSON is the dag-json layout version written by the exporters
	DagJSON = "1.0.0"
)

// ComponentVersion returns the version for a given component name
func ComponentVersion(name string) string {
	switch name {
	case "cli", "paramval":
		return CLI
	case "evaluator":
		return Evaluator
	case "store":
		return Store
	case "dag-json":
		return DagJSON
	default:
		return Module
	}
}
