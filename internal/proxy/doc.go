// Package proxy gives the orchestrator a uniform view of the two remote
// specialists. A proxy validates a task's parameters before any network
// call, translates the task into an A2A request, and normalizes both the
// typed result and every failure mode.
//
// Invoke never returns a raw transport error. Every failure is a
// [*Error] with one of three kinds: the specialist could not be reached,
// the call ran out of time, or the specialist answered with a structured
// fault. The orchestrator records these as partial results without
// caring which specialist produced them.
package proxy
