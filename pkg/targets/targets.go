// Package targets expands a requested platform/architecture list into the
// concrete build targets the native toolchains understand. Resolution is a
// pure table lookup; the tables are the fixed set of architectures each
// platform's toolchain ships.
package targets

import (
	"sort"
	"strings"

	"github.com/crossgen/crossgen/pkg/errors"
)

// Platform names a native target platform.
type Platform string

const (
	Android Platform = "android"
	Apple   Platform = "apple"
)

// Platforms lists every recognized platform in canonical order.
var Platforms = []Platform{Android, Apple}

// ConcreteTarget is one (platform, architecture) build unit, carrying the
// toolchain triple and, for Android, the ABI directory name the Gradle
// project expects under jniLibs.
type ConcreteTarget struct {
	Platform Platform `toml:"platform"`
	Arch     string   `toml:"arch"`
	Triple   string   `toml:"triple"`
	ABI      string   `toml:"abi,omitempty"`
}

// DefaultArch is the architecture picked when a platform is requested
// without an explicit architecture list.
const DefaultArch = "aarch64"

var androidTargets = map[string]ConcreteTarget{
	"aarch64": {Platform: Android, Arch: "arm64", Triple: "aarch64-linux-android", ABI: "arm64-v8a"},
	"armv7":   {Platform: Android, Arch: "arm", Triple: "armv7-linux-androideabi", ABI: "armeabi-v7a"},
	"i686":    {Platform: Android, Arch: "x86", Triple: "i686-linux-android", ABI: "x86"},
	"x86_64":  {Platform: Android, Arch: "x86_64", Triple: "x86_64-linux-android", ABI: "x86_64"},
}

var appleTargets = map[string]ConcreteTarget{
	"aarch64": {Platform: Apple, Arch: "arm64", Triple: "aarch64-apple-ios"},
	"x86_64":  {Platform: Apple, Arch: "x86_64", Triple: "x86_64-apple-ios"},
}

func tableFor(platform Platform) (map[string]ConcreteTarget, bool) {
	switch platform {
	case Android:
		return androidTargets, true
	case Apple:
		return appleTargets, true
	}
	return nil, false
}

// ParsePlatform converts a user-supplied platform name to a Platform,
// reporting the recognized values on failure.
func ParsePlatform(name string) (Platform, error) {
	p := Platform(strings.ToLower(strings.TrimSpace(name)))
	if _, ok := tableFor(p); !ok {
		return "", errors.Newf(errors.ErrPlatformUnknown,
			"unknown platform %q (recognized: %s)", name, platformNames()).
			WithDetail("platform", name)
	}
	return p, nil
}

// Resolve expands the requested platforms and architecture keys into an
// ordered sequence of concrete targets. An empty arch list selects the
// default architecture per platform; the single key "all" selects every
// architecture the platform supports. The result ordering is fixed:
// platforms in canonical order, architectures sorted by key, so equal
// requests always resolve identically.
func Resolve(platforms []Platform, archs []string) ([]ConcreteTarget, error) {
	if len(platforms) == 0 {
		return nil, errors.New(errors.ErrInvalidInput, "at least one platform is required")
	}

	seen := make(map[Platform]bool)
	var resolved []ConcreteTarget
	for _, canonical := range Platforms {
		requested := false
		for _, p := range platforms {
			if p == canonical {
				requested = true
			}
		}
		if !requested || seen[canonical] {
			continue
		}
		seen[canonical] = true

		table, _ := tableFor(canonical)
		keys, err := archKeys(canonical, table, archs)
		if err != nil {
			return nil, err
		}
		for _, key := range keys {
			resolved = append(resolved, table[key])
		}
	}

	for _, p := range platforms {
		if !seen[p] {
			return nil, errors.Newf(errors.ErrPlatformUnknown,
				"unknown platform %q (recognized: %s)", p, platformNames()).
				WithDetail("platform", string(p))
		}
	}
	return resolved, nil
}

func archKeys(platform Platform, table map[string]ConcreteTarget, archs []string) ([]string, error) {
	if len(archs) == 0 {
		return []string{DefaultArch}, nil
	}
	all := make([]string, 0, len(table))
	for key := range table {
		all = append(all, key)
	}
	sort.Strings(all)

	if len(archs) == 1 && archs[0] == "all" {
		return all, nil
	}

	var keys []string
	for _, arch := range archs {
		arch = strings.ToLower(strings.TrimSpace(arch))
		if _, ok := table[arch]; !ok {
			// An arch only another platform supports is skipped, not an
			// error, so "--arch x86_64 --platform android,apple" works.
			if knownAnywhere(arch) {
				continue
			}
			return nil, errors.Newf(errors.ErrTargetUnknown,
				"unknown architecture %q for platform %s (recognized: %s)",
				arch, platform, strings.Join(all, ", ")).
				WithDetail("arch", arch).
				WithDetail("platform", string(platform))
		}
		keys = append(keys, arch)
	}
	if len(keys) == 0 {
		// Every requested arch was skipped. A platform that would build
		// zero targets is a misconfiguration, not a quiet no-op.
		return nil, errors.Newf(errors.ErrTargetUnknown,
			"none of the requested architectures apply to platform %s (recognized: %s)",
			platform, strings.Join(all, ", ")).
			WithDetail("platform", string(platform))
	}
	sort.Strings(keys)
	return dedupe(keys), nil
}

func knownAnywhere(arch string) bool {
	_, android := androidTargets[arch]
	_, apple := appleTargets[arch]
	return android || apple
}

func dedupe(keys []string) []string {
	out := keys[:0]
	for i, k := range keys {
		if i == 0 || keys[i-1] != k {
			out = append(out, k)
		}
	}
	return out
}

func platformNames() string {
	names := make([]string, len(Platforms))
	for i, p := range Platforms {
		names[i] = string(p)
	}
	return strings.Join(names, ", ")
}
