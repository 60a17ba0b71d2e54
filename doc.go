// Package easyexpr is an embeddable, sandboxed expression engine.
//
// A host program hands it a script — a small imperative program written in
// the engine's mini-language — together with a map of named input fields.
// The engine parses the script, evaluates it against the inputs, and
// returns a record of variable assignments, diagnostic messages, and
// (on failure) an error location with a source-line snippet.
//
// Typical use is as follows:
//
//  1. Create an Engine, optionally passing Options to control limits,
//     rounding, and coercion behavior.
//  2. Register any custom Converters the host wants to add to the
//     built-in set, and the Functions scripts may call (New registers
//     none; builtin.RegisterAll adds the standard collection).
//  3. Call Compile to parse a script once (the compiled Block is cached
//     by the engine), or call Execute directly to compile-on-demand.
//  4. Call Execute with a script (or a previously compiled Block) and an
//     input map.
//  5. Inspect the ExecutionResult: Assignments, Messages, and, on
//     failure, ErrorMessage/ErrorCode/ErrorLine/ErrorColumn/ErrorSnippet.
//
// Concurrency
//
// An Engine may be shared across goroutines once its Converter and
// Function registries are configured. The compilation cache tolerates
// concurrent readers and writers; an Execute call itself is synchronous
// and single-threaded. Options, once passed to New, are treated as
// immutable for the lifetime of the Engine — registering converters or
// functions while executions are in flight is not supported.
//
// Sandboxing
//
// Every execution is bounded by Options: max AST node count at compile
// time, max node visits and max recursion depth at evaluation time, and
// an optional wall-clock timeout. A script that exceeds any of these
// bounds fails with the corresponding limit error rather than running
// unbounded.
package easyexpr
