// Package ai wraps the remote text-generation collaborator that turns a
// processed dataset into a narrative analysis.
//
// The collaborator is opaque and unreliable by contract: the client builds a
// prompt from sample rows, descriptive statistics, and the aggregate
// preview, sends it over HTTP with a client-side rate limit and timeout, and
// reports failures for the caller to classify. ClassifyFailure buckets any
// error into auth, rate-limit, connection, or unknown by message substrings,
// and Placeholder supplies the text the pipeline substitutes so a failed
// summarization never aborts a run.
package ai
