// Package internal contains helper utilities that are intentionally private
// to linkAuth, currently secure random generation for nonces and attempt
// identifiers.
//
// # What this package must NOT do
//
//   - Export types that appear in the public linkAuth API.
//   - Be imported by any package outside the linkAuth module.
package internal
