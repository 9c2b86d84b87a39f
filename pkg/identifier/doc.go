// Package identifier derives the platform-specific identifiers a mobile
// project needs from a human-chosen display name and a reverse-domain
// prefix.
//
// A single display name has to satisfy several unrelated naming grammars
// at once: Android package names (lower snake, dot-separated, no leading
// digits, no Java keywords), Apple bundle identifiers (RFC 1034 style
// labels), and the source identifier used to name the shared native
// library. Derivation is deterministic and pure: equal inputs always
// yield byte-identical output, and any grammar violation or reserved-word
// collision is reported as a typed error rather than silently repaired.
package identifier
