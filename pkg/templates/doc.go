// Package templates loads template packs and renders them against a
// project's render context.
//
// A template pack is a directory tree under one of the pack roots; its
// directory name is the pack's identity. An optional pack.toml at the
// pack root declares the markers the pack's templates reference, glob
// patterns for binary files that must be copied byte-for-byte, and
// conditional predicates that include or exclude subtrees based on the
// render context.
//
// Rendering is strict: an unresolved marker aborts the whole run rather
// than substituting a blank, since a blank would produce plausible-looking
// but broken native project files. Rendering never touches the
// destination tree; it produces staged files for the materialize package.
package templates
