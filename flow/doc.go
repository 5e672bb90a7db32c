// Package flow builds pipelines out of transforms.
//
// A Transform wraps a base Func using a compositor chosen by the caller.
// Transforms are combined with IChain (input side, first listed is
// outermost), OChain (output side, applied in listed order) and IOChain.
// SplitChain fans one call out into several independently wrapped branches
// and merges their results; Join recombines named results across branches
// before running the shared downstream stage once.
package flow
