// Package pedant provides runtime-enforced type and call-convention
// checking for the functions, methods, classes and records of a dynamically
// typed object runtime.
//
//	`pedant` is defensive verification, not a compiler: declarations carry
//	their types as annotation text, the library compiles them into
//	descriptors once at declaration time, and every call is then validated
//	against them - keyword-only argument passing, argument types, return
//	type - with diagnostics that pinpoint the offending value.
//
//	Checking can be switched off process-wide, which turns every validation
//	into a cheap no-op, so pedantic checking can stay in the codebase and
//	only be active in tests and debugging sessions.
package pedant
