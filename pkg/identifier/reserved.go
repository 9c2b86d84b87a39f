package identifier

// javaReserved holds the Java and Kotlin keywords that may not appear as
// a segment of an Android package name. A collision here surfaces as an
// opaque aapt/Gradle failure if it isn't caught up front.
var javaReserved = map[string]bool{
	"abstract": true, "assert": true, "boolean": true, "break": true,
	"byte": true, "case": true, "catch": true, "char": true,
	"class": true, "const": true, "continue": true, "default": true,
	"do": true, "double": true, "else": true, "enum": true,
	"extends": true, "final": true, "finally": true, "float": true,
	"for": true, "goto": true, "if": true, "implements": true,
	"import": true, "instanceof": true, "int": true, "interface": true,
	"long": true, "native": true, "new": true, "package": true,
	"private": true, "protected": true, "public": true, "return": true,
	"short": true, "static": true, "strictfp": true, "super": true,
	"switch": true, "synchronized": true, "this": true, "throw": true,
	"throws": true, "transient": true, "try": true, "void": true,
	"volatile": true, "while": true,
	// Kotlin hard keywords not already covered above
	"fun": true, "in": true, "is": true, "object": true,
	"typealias": true, "val": true, "var": true, "when": true,
}

// swiftReserved holds the Swift keywords that may not be used as the
// source identifier for the generated Xcode project.
var swiftReserved = map[string]bool{
	"associatedtype": true, "class": true, "deinit": true, "enum": true,
	"extension": true, "fileprivate": true, "func": true, "import": true,
	"init": true, "inout": true, "internal": true, "let": true,
	"open": true, "operator": true, "private": true, "protocol": true,
	"public": true, "rethrows": true, "static": true, "struct": true,
	"subscript": true, "typealias": true, "var": true, "break": true,
	"case": true, "continue": true, "default": true, "defer": true,
	"do": true, "else": true, "fallthrough": true, "for": true,
	"guard": true, "if": true, "in": true, "repeat": true,
	"return": true, "switch": true, "where": true, "while": true,
	"as": true, "catch": true, "false": true, "is": true,
	"nil": true, "self": true, "super": true, "throw": true,
	"throws": true, "true": true, "try": true,
}

// buildToolReserved holds names that break the generated Gradle or Xcode
// project for tooling rather than language reasons.
var buildToolReserved = map[string]bool{
	"gradle": true,
	"build":  true,
}

func isAndroidReserved(segment string) bool {
	return javaReserved[segment] || buildToolReserved[segment]
}

func isSourceReserved(token string) bool {
	return swiftReserved[token] || javaReserved[token]
}
