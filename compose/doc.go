// Package compose fuses callables.
//
// Every participant is a Func: named parameters in, named results out. A
// Compositor merges an outer and an inner Func in three stages,
//
//	compositor(outer, inner)(outerParams)(ctx, innerParams)
//
// so a transform can split a call's parameters between the two sides before
// anything runs. Three strategies are provided:
//
//   - Direct calls inner, merges its result into the outer parameters and
//     calls outer once.
//   - IMapping expands the parameters with a replicate.Spec and calls inner
//     once per distinct parameter combination (memoized by content
//     fingerprint), then outer once per replicate.
//   - OMapping calls inner once, splits its result into records and calls
//     outer once per record.
//
// Node, Wrapper and Primitive are immutable value wrappers around callables
// for declaring signatures, binding parameters and naming stages. Middleware
// adds logging, tracing and metrics around a stage.
package compose
