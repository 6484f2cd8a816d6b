// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// LookupStatus tags the outcome of fetching a single paper.
type LookupStatus int

const (
	LookupFound LookupStatus = iota + 1
	LookupNotFound
	LookupTransportError
)

func (s LookupStatus) String() string {
	switch s {
	case LookupFound:
		return "found"
	case LookupNotFound:
		return "not_found"
	case LookupTransportError:
		return "transport_error"
	default:
		return "unknown"
	}
}

// PaperLookup is the result of GET /paper/{id}. It keeps "the backend has
// no such paper" apart from "the backend could not be reached".
type PaperLookup struct {
	Status LookupStatus
	Paper  Paper

	// Reason describes a transport error. It is meant for logs, not users.
	Reason string
}

// Found wraps a located paper.
func Found(p Paper) PaperLookup { return PaperLookup{Status: LookupFound, Paper: p} }

// NotFound reports that the backend has no paper with the requested id.
func NotFound() PaperLookup { return PaperLookup{Status: LookupNotFound} }

// TransportError reports that the lookup failed before an answer was known.
func TransportError(reason string) PaperLookup {
	return PaperLookup{Status: LookupTransportError, Reason: reason}
}

// OK reports whether the lookup found a paper.
func (l PaperLookup) OK() bool { return l.Status == LookupFound }
