/*
Package sandbox executes untrusted widget script text in isolation.

# Overview

Each evaluation session gets a fresh goja VM with exactly three injected
capabilities:

 1. A CommonJS-style module/exports container the code populates
 2. require(), backed by the bundle's module resolver, memoized per
    session and tolerant of reference cycles
 3. The rendering-primitives handle (an external collaborator) for
    constructing opaque renderable nodes

Nothing else of the host is reachable: no filesystem, no network, no
timers, no ambient globals. Execution is bounded by a timeout enforced
through VM interruption.

# Error Model

Every failure inside evaluated code (thrown errors, syntax failures,
interrupts) surfaces as an *EvalError carrying the artifact name. A
malformed widget degrades to a per-instance error, never a crash of the
caller.
*/
package sandbox
