package identifier

import (
	"regexp"
	"strings"
	"sync"

	"golang.org/x/net/publicsuffix"

	"github.com/crossgen/crossgen/pkg/errors"
	"github.com/crossgen/crossgen/pkg/logging"
)

// Set holds every rendering of a derived identifier. All fields are
// computed together from one (display name, domain prefix) pair.
type Set struct {
	// AppTokens is the sanitized, pre-case token sequence the renderings
	// are built from, e.g. ["loeve", "kuechen"].
	AppTokens []string

	// AndroidPackage is the full Android package name,
	// e.g. "com.example.loeve_kuechen".
	AndroidPackage string

	// AppleBundleID is the full Apple bundle identifier,
	// e.g. "com.example.loeve-kuechen".
	AppleBundleID string

	// SnakeCase is the source identifier in lower_snake form, used for
	// library names and file names.
	SnakeCase string

	// UpperCamel is the source identifier in UpperCamel form, used for
	// type names in generated sources.
	UpperCamel string
}

var (
	domainLabelRe    = regexp.MustCompile(`^[a-z]([a-z0-9-]*[a-z0-9])?$`)
	androidSegmentRe = regexp.MustCompile(`^[a-z][a-z0-9_]*$`)
	bundleLabelRe    = regexp.MustCompile(`^[A-Za-z]([A-Za-z0-9-]*[A-Za-z0-9])?$`)
)

var cache = struct {
	sync.Mutex
	m map[[2]string]*Set
}{m: make(map[[2]string]*Set)}

// Derive computes the platform identifiers for a display name and a
// reverse-domain prefix such as "com.example". It is deterministic and
// pure; results are cached, so equal inputs return the same Set.
//
// Every failure is reported as a typed error naming the offending
// field or segment. Nothing is ever auto-renamed: a reserved-word
// collision here would otherwise surface much later as an opaque
// native build failure.
func Derive(displayName, domainPrefix string) (*Set, error) {
	key := [2]string{displayName, domainPrefix}
	cache.Lock()
	if s, ok := cache.m[key]; ok {
		cache.Unlock()
		return s, nil
	}
	cache.Unlock()

	logger := logging.GetLogger("identifier")

	if strings.TrimSpace(displayName) == "" {
		return nil, errors.New(errors.ErrIdentifierEmpty, "display name must not be empty")
	}

	segments, err := validateDomainPrefix(domainPrefix)
	if err != nil {
		return nil, err
	}

	tokens := Tokenize(Transliterate(displayName))
	if len(tokens) == 0 {
		return nil, errors.Newf(errors.ErrIdentifierEmpty,
			"display name %q has no usable characters after ASCII normalization", displayName).
			WithDetail("displayName", displayName)
	}

	snake := strings.Join(tokens, "_")
	kebab := strings.Join(tokens, "-")
	camel := upperCamel(tokens)

	if !androidSegmentRe.MatchString(snake) {
		return nil, errors.Newf(errors.ErrIdentifierGrammar,
			"derived Android package segment %q is not valid", snake).
			WithDetail("segment", snake)
	}
	if !bundleLabelRe.MatchString(kebab) {
		return nil, errors.Newf(errors.ErrIdentifierGrammar,
			"derived bundle identifier label %q is not valid", kebab).
			WithDetail("label", kebab)
	}

	for _, seg := range append(append([]string{}, segments...), snake) {
		if !androidSegmentRe.MatchString(seg) {
			return nil, errors.Newf(errors.ErrIdentifierGrammar,
				"segment %q is not valid in an Android package name", seg).
				WithDetail("segment", seg).
				WithDetail("platform", "android")
		}
		if isAndroidReserved(seg) {
			return nil, errors.Newf(errors.ErrIdentifierReserved,
				"segment %q of the Android package name is a reserved word", seg).
				WithDetail("segment", seg).
				WithDetail("platform", "android")
		}
	}
	for _, tok := range tokens {
		if isSourceReserved(tok) {
			return nil, errors.Newf(errors.ErrIdentifierReserved,
				"token %q of the source identifier is a reserved word", tok).
				WithDetail("token", tok).
				WithDetail("platform", "source")
		}
	}

	set := &Set{
		AppTokens:      tokens,
		AndroidPackage: domainPrefix + "." + snake,
		AppleBundleID:  domainPrefix + "." + kebab,
		SnakeCase:      snake,
		UpperCamel:     camel,
	}

	logger.Debug().
		Str("displayName", displayName).
		Str("androidPackage", set.AndroidPackage).
		Str("appleBundleID", set.AppleBundleID).
		Msg("Derived identifiers")

	cache.Lock()
	cache.m[key] = set
	cache.Unlock()
	return set, nil
}

// validateDomainPrefix checks the syntax of a reverse-domain prefix and
// rejects prefixes that are nothing but a registrable public suffix
// ("com", "uk.co"), which would root the generated identifiers at a
// disallowed top-level label. Returns the prefix's segments.
func validateDomainPrefix(prefix string) ([]string, error) {
	if prefix == "" {
		return nil, errors.New(errors.ErrDomainInvalid, "domain prefix must not be empty")
	}
	segments := strings.Split(prefix, ".")
	for _, seg := range segments {
		if !domainLabelRe.MatchString(seg) {
			return nil, errors.Newf(errors.ErrDomainInvalid,
				"domain prefix segment %q is not a valid label", seg).
				WithDetail("prefix", prefix).
				WithDetail("segment", seg)
		}
	}

	// The prefix reads reversed: "com.example" names the domain
	// "example.com".
	reversed := make([]string, len(segments))
	for i, seg := range segments {
		reversed[len(segments)-1-i] = seg
	}
	domain := strings.Join(reversed, ".")
	if suffix, _ := publicsuffix.PublicSuffix(domain); suffix == domain {
		return nil, errors.Newf(errors.ErrDomainSuffix,
			"domain prefix %q is a bare public suffix; use a registrable domain such as %q", prefix, prefix+".yourname").
			WithDetail("prefix", prefix).
			WithDetail("publicSuffix", suffix)
	}
	return segments, nil
}

func upperCamel(tokens []string) string {
	var b strings.Builder
	for _, tok := range tokens {
		b.WriteString(strings.ToUpper(tok[:1]))
		b.WriteString(tok[1:])
	}
	return b.String()
}
