// Package deeplink maps inbound custom-scheme and canonical web URLs onto
// internal navigation routes for the ByteHub client.
//
// [Resolver.Resolve] is a pure function: the same URL always yields the same
// [ResolvedLink], and a nil result occurs strictly when the URL belongs to
// neither the custom scheme nor the canonical forum domain. Resolution of a
// recognized scheme is total: an unmatched path falls back to the home
// route rather than failing.
//
// # Route table ordering
//
// The route table is evaluated first-match-wins, and the order is a
// correctness invariant: the topic /comments form must precede the bare
// topic rule, and the numeric /id/<n> category forms must precede their slug
// twins. Reordering entries changes observable behavior.
//
// # What this package must NOT do
//
//   - Perform I/O or touch persistent state. Auth-callback payloads are
//     carried through on the returned route for the engine to consume.
//   - Decode the payload query parameter. It is preserved byte-for-byte so
//     the envelope layer can apply its own normalization.
package deeplink
