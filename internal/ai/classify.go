package ai

import "strings"

// FailureKind classifies a summarizer failure by inspecting its message.
type FailureKind string

const (
	FailureAuth       FailureKind = "auth"
	FailureRateLimit  FailureKind = "rate_limit"
	FailureConnection FailureKind = "connection"
	FailureUnknown    FailureKind = "unknown"
)

// ClassifyFailure maps an error from the summarizer call to a failure kind
// by looking for recognizable substrings. The remote service is opaque, so
// message matching is the only classification surface available.
func ClassifyFailure(err error) FailureKind {
	if err == nil {
		return FailureUnknown
	}
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "api key"),
		strings.Contains(msg, "unauthorized"),
		strings.Contains(msg, "unauthenticated"),
		strings.Contains(msg, "permission"):
		return FailureAuth
	case strings.Contains(msg, "rate"),
		strings.Contains(msg, "quota"),
		strings.Contains(msg, "resource exhausted"),
		strings.Contains(msg, "too many requests"):
		return FailureRateLimit
	case strings.Contains(msg, "network"),
		strings.Contains(msg, "connection"),
		strings.Contains(msg, "timed out"),
		strings.Contains(msg, "timeout"),
		strings.Contains(msg, "no such host"),
		strings.Contains(msg, "deadline exceeded"):
		return FailureConnection
	default:
		return FailureUnknown
	}
}

// Placeholder returns the user-facing text substituted when summarization
// fails. Summarization is never fatal; callers embed this text and continue.
func Placeholder(kind FailureKind, err error) string {
	switch kind {
	case FailureAuth:
		return "AI authentication error: invalid or missing API key."
	case FailureRateLimit:
		return "AI rate limit or quota reached. Please retry later."
	case FailureConnection:
		return "AI connection error: check your internet connection."
	default:
		if err != nil {
			return "AI analysis failed: " + err.Error()
		}
		return "AI analysis unavailable."
	}
}
