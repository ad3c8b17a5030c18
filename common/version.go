package common

import "github.com/nspcc-dev/neo-go/pkg/interop/native/std"

const (
	major = 0
	minor = 1
	patch = 0

	// Oldest version the contract can be updated from. Bump all three
	// together, prevMinor may stay equal to minor while no data migration
	// is needed.
	prevMajor = 0
	prevMinor = 1
	prevPatch = 0

	// Version is the numeric form of the current version, 1.2.3 is 1_002_003.
	Version = major*1_000_000 + minor*1_000 + patch

	// PrevVersion is the numeric form of the oldest supported previous version.
	PrevVersion = prevMajor*1_000_000 + prevMinor*1_000 + prevPatch

	// ErrVersionMismatch is thrown by CheckVersion when the stored version is
	// older than PrevVersion.
	ErrVersionMismatch = "previous version mismatch"

	// ErrAlreadyUpdated is thrown by CheckVersion when the stored version is
	// already the current one.
	ErrAlreadyUpdated = "contract is already of the latest version"
)

// CheckVersion panics unless the contract can be updated from the given stored
// version: it must be at least PrevVersion and differ from Version.
func CheckVersion(from int) {
	if from < PrevVersion {
		panic(ErrVersionMismatch + ": expected >=" + std.Itoa(PrevVersion, 10))
	}
	if from == Version {
		panic(ErrAlreadyUpdated + ": " + std.Itoa(Version, 10))
	}
}

// AppendVersion appends Version to the deploy data, which must be nil or []any.
func AppendVersion(data any) []any {
	if data == nil {
		return []any{Version}
	}
	return append(data.([]any), Version)
}
