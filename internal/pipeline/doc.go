// Package pipeline drives each clause unit through the full deliberation
// state machine: analysis by the assessor pool, disagreement detection,
// an optional blind peer-review round, and arbitration. Units run in
// bounded concurrent batches and fail in isolation.
package pipeline
