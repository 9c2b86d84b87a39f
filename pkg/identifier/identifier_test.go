// Test Type: Unit Test
// Description: Tests for the identifier package - platform identifier derivation

package identifier_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crossgen/crossgen/pkg/errors"
	"github.com/crossgen/crossgen/pkg/identifier"
)

func TestDerive(t *testing.T) {
	tests := []struct {
		name         string
		displayName  string
		domainPrefix string
		wantAndroid  string
		wantBundle   string
		wantSnake    string
		wantCamel    string
	}{
		{
			name:         "simple_two_word_name",
			displayName:  "Fire Truck",
			domainPrefix: "com.example",
			wantAndroid:  "com.example.fire_truck",
			wantBundle:   "com.example.fire-truck",
			wantSnake:    "fire_truck",
			wantCamel:    "FireTruck",
		},
		{
			name:         "umlauts_transliterated",
			displayName:  "Löve Küchen2",
			domainPrefix: "com.example",
			wantAndroid:  "com.example.loeve_kuechen2",
			wantBundle:   "com.example.loeve-kuechen2",
			wantSnake:    "loeve_kuechen2",
			wantCamel:    "LoeveKuechen2",
		},
		{
			name:         "leading_digit_spelled_out",
			displayName:  "2 Fast Notes",
			domainPrefix: "org.acme",
			wantAndroid:  "org.acme.two_fast_notes",
			wantBundle:   "org.acme.two-fast-notes",
			wantSnake:    "two_fast_notes",
			wantCamel:    "TwoFastNotes",
		},
		{
			name:         "punctuation_splits_tokens",
			displayName:  "note-it.now",
			domainPrefix: "io.github.someone",
			wantAndroid:  "io.github.someone.note_it_now",
			wantBundle:   "io.github.someone.note-it-now",
			wantSnake:    "note_it_now",
			wantCamel:    "NoteItNow",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			set, err := identifier.Derive(tt.displayName, tt.domainPrefix)
			require.NoError(t, err)
			assert.Equal(t, tt.wantAndroid, set.AndroidPackage)
			assert.Equal(t, tt.wantBundle, set.AppleBundleID)
			assert.Equal(t, tt.wantSnake, set.SnakeCase)
			assert.Equal(t, tt.wantCamel, set.UpperCamel)
			assert.NotEqual(t, set.AndroidPackage, set.AppleBundleID,
				"android and apple renderings must differ in separator convention")
		})
	}
}

func TestDeriveIsDeterministic(t *testing.T) {
	first, err := identifier.Derive("Löve Küchen2", "com.example")
	require.NoError(t, err)
	second, err := identifier.Derive("Löve Küchen2", "com.example")
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Same(t, first, second, "equal inputs should hit the cache")
}

func TestDeriveErrors(t *testing.T) {
	tests := []struct {
		name         string
		displayName  string
		domainPrefix string
		wantCode     errors.ErrorCode
	}{
		{
			name:         "empty_display_name",
			displayName:  "",
			domainPrefix: "com.example",
			wantCode:     errors.ErrIdentifierEmpty,
		},
		{
			name:         "whitespace_display_name",
			displayName:  "   ",
			domainPrefix: "com.example",
			wantCode:     errors.ErrIdentifierEmpty,
		},
		{
			name:         "no_ascii_content",
			displayName:  "日本語",
			domainPrefix: "com.example",
			wantCode:     errors.ErrIdentifierEmpty,
		},
		{
			name:         "bare_public_suffix_com",
			displayName:  "Fire Truck",
			domainPrefix: "com",
			wantCode:     errors.ErrDomainSuffix,
		},
		{
			name:         "bare_public_suffix_co_uk",
			displayName:  "Fire Truck",
			domainPrefix: "uk.co",
			wantCode:     errors.ErrDomainSuffix,
		},
		{
			name:         "empty_domain",
			displayName:  "Fire Truck",
			domainPrefix: "",
			wantCode:     errors.ErrDomainInvalid,
		},
		{
			name:         "domain_segment_bad_label",
			displayName:  "Fire Truck",
			domainPrefix: "com.ex ample",
			wantCode:     errors.ErrDomainInvalid,
		},
		{
			name:         "reserved_word_in_domain",
			displayName:  "Fire Truck",
			domainPrefix: "com.class",
			wantCode:     errors.ErrIdentifierReserved,
		},
		{
			name:         "reserved_word_app_name",
			displayName:  "Switch",
			domainPrefix: "com.example",
			wantCode:     errors.ErrIdentifierReserved,
		},
		{
			name:         "hyphenated_domain_invalid_for_android",
			displayName:  "Fire Truck",
			domainPrefix: "com.my-org",
			wantCode:     errors.ErrIdentifierGrammar,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := identifier.Derive(tt.displayName, tt.domainPrefix)
			require.Error(t, err)
			assert.True(t, errors.IsErrorCode(err, tt.wantCode),
				"expected %s, got %v", tt.wantCode, err)
		})
	}
}

func TestReservedWordNeverSilentlyMangled(t *testing.T) {
	// A domain that reverses onto a Java keyword must fail, not get
	// renamed behind the user's back.
	_, err := identifier.Derive("Anything", "com.package.tools")
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrIdentifierReserved))
	details := errors.GetErrorDetails(err)
	assert.Equal(t, "package", details["segment"])
}
