// Package model defines the core data types and validation rules of the deployment scheduler.
package model

import (
	"fmt"
	"strings"
)

// VersionMode selects how the deployed version is resolved.
// Decoding accepts any string; ValidateJobRequest rejects unknown modes.
type VersionMode string

const (
	// VersionModeLatest deploys the most recently approved version.
	VersionModeLatest VersionMode = "latest"
	// VersionModeList lets the operator pick one of the most recent versions.
	VersionModeList VersionMode = "list"
	// VersionModeManual deploys an explicit version string.
	VersionModeManual VersionMode = "manual"
	// VersionModeHead deploys the most recent commit on the branch.
	VersionModeHead VersionMode = "head"
	// VersionModeHash deploys an explicit commit hash.
	VersionModeHash VersionMode = "hash"
)

// VersionRequirement tells whether a literal version accompanies a VersionMode.
type VersionRequirement string

const (
	// VersionRequired means a non-empty version must be supplied.
	VersionRequired VersionRequirement = "required"
	// VersionForbidden means a version must not be supplied.
	VersionForbidden VersionRequirement = "forbidden"
)

// AllVersionModes returns the modes in their presentation order.
func AllVersionModes() []VersionMode {
	return []VersionMode{
		VersionModeLatest,
		VersionModeList,
		VersionModeManual,
		VersionModeHead,
		VersionModeHash,
	}
}

// Valid reports whether m is a known mode.
func (m VersionMode) Valid() bool {
	switch m {
	case VersionModeLatest, VersionModeList, VersionModeManual, VersionModeHead, VersionModeHash:
		return true
	default:
		return false
	}
}

// ParseVersionMode normalizes v and reports whether it names a known mode.
func ParseVersionMode(v string) (VersionMode, error) {
	m := VersionMode(strings.ToLower(strings.TrimSpace(v)))
	if !m.Valid() {
		return "", fmt.Errorf("invalid version mode: %q", v)
	}
	return m, nil
}

// RequirementFor returns whether mode needs a literal version.
// Unknown modes are treated as forbidding one; validation rejects them before this matters.
func RequirementFor(mode VersionMode) VersionRequirement {
	switch mode {
	case VersionModeManual, VersionModeHash:
		return VersionRequired
	default:
		return VersionForbidden
	}
}

// HintFor returns the operator-facing hint for mode.
// The list mode only documents the selection contract; no version list is produced here.
func HintFor(mode VersionMode) string {
	switch mode {
	case VersionModeLatest:
		return "most recently approved version will be used"
	case VersionModeList:
		return "choose from the 5 most recent versions"
	case VersionModeManual:
		return "example: 15.13.0.0-0"
	case VersionModeHead:
		return "most recent commit on the branch will be used"
	case VersionModeHash:
		return "full or abbreviated commit hash"
	default:
		return ""
	}
}

// VersionModeInfo describes a mode for API consumers.
type VersionModeInfo struct {
	Mode        VersionMode        `json:"mode"        yaml:"mode"`
	Requirement VersionRequirement `json:"requirement" yaml:"requirement"`
	Hint        string             `json:"hint"        yaml:"hint"`
}

// DescribeVersionModes returns requirement and hint for every mode.
func DescribeVersionModes() []VersionModeInfo {
	modes := AllVersionModes()
	out := make([]VersionModeInfo, 0, len(modes))
	for _, m := range modes {
		out = append(out, VersionModeInfo{Mode: m, Requirement: RequirementFor(m), Hint: HintFor(m)})
	}
	return out
}
