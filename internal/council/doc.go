// Package council implements the analysis fan-out and disagreement
// detection at the heart of the deliberation pipeline. A Pool sends one
// clause to every active assessor concurrently; the disagreement predicates
// then decide whether the clause needs work at all and whether the
// assessors diverge enough to warrant a blind peer review round.
package council
