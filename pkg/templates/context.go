package templates

import (
	"sort"

	"github.com/crossgen/crossgen/pkg/config"
	"github.com/crossgen/crossgen/pkg/errors"
	"github.com/crossgen/crossgen/pkg/identifier"
	"github.com/crossgen/crossgen/pkg/targets"
)

// RenderContext is the immutable key/value environment templates are
// rendered against. It merges three namespaces - config fields, derived
// identifiers, and target-resolution results - and refuses construction
// when two namespaces try to register the same key, so generated files
// can never depend on merge order.
type RenderContext struct {
	values map[string]interface{}
	keys   []string
}

// BuildContext assembles the render context for one generation run.
func BuildContext(cfg *config.ProjectConfig, ids *identifier.Set, resolved []targets.ConcreteTarget) (*RenderContext, error) {
	ctx := &RenderContext{values: make(map[string]interface{})}

	// Config namespace.
	if err := ctx.add(map[string]interface{}{
		"app_name":        cfg.AppName,
		"domain":          cfg.DomainPrefix,
		"template_pack":   cfg.TemplatePack,
		"min_android_sdk": cfg.MinAndroidSDK,
		"min_ios_version": cfg.MinIOSVersion,
	}); err != nil {
		return nil, err
	}

	// Identifier namespace.
	if err := ctx.add(map[string]interface{}{
		"android_package": ids.AndroidPackage,
		"apple_bundle_id": ids.AppleBundleID,
		"app_snake":       ids.SnakeCase,
		"app_camel":       ids.UpperCamel,
	}); err != nil {
		return nil, err
	}

	// Target namespace. The enabled flags come from the config's platform
	// set, not from the resolved target list: which subtrees a pack emits
	// is a property of the platforms the user enabled, never of how the
	// architecture list happened to expand.
	var targetMaps []map[string]interface{}
	var androidABIs []string
	for _, t := range resolved {
		targetMaps = append(targetMaps, map[string]interface{}{
			"platform": string(t.Platform),
			"arch":     t.Arch,
			"triple":   t.Triple,
			"abi":      t.ABI,
		})
		if t.Platform == targets.Android {
			androidABIs = append(androidABIs, t.ABI)
		}
	}
	if err := ctx.add(map[string]interface{}{
		"targets":         targetMaps,
		"android_abis":    androidABIs,
		"android_enabled": cfg.HasPlatform(targets.Android),
		"apple_enabled":   cfg.HasPlatform(targets.Apple),
	}); err != nil {
		return nil, err
	}

	sort.Strings(ctx.keys)
	return ctx, nil
}

func (c *RenderContext) add(ns map[string]interface{}) error {
	for key, value := range ns {
		if _, exists := c.values[key]; exists {
			return errors.Newf(errors.ErrContextCollision,
				"render context key %q registered twice", key).
				WithDetail("key", key)
		}
		c.values[key] = value
		c.keys = append(c.keys, key)
	}
	return nil
}

// Lookup returns the value bound to key.
func (c *RenderContext) Lookup(key string) (interface{}, bool) {
	v, ok := c.values[key]
	return v, ok
}

// Bool returns the truthiness of the value bound to key. Missing keys
// report ok=false so predicate evaluation can fail loudly.
func (c *RenderContext) Bool(key string) (value, ok bool) {
	v, present := c.values[key]
	if !present {
		return false, false
	}
	switch t := v.(type) {
	case bool:
		return t, true
	case string:
		return t != "", true
	case int:
		return t != 0, true
	}
	return v != nil, true
}

// Keys returns the sorted key set.
func (c *RenderContext) Keys() []string {
	out := make([]string, len(c.keys))
	copy(out, c.keys)
	return out
}

// data exposes the underlying map for text/template execution. Callers
// must not mutate the result.
func (c *RenderContext) data() map[string]interface{} {
	return c.values
}
