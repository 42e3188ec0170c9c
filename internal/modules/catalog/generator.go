package catalog

import (
	"sort"
	"strings"

	"github.com/chisomo/mercato-backend/internal/modules/attribute"
)

// axis is one attribute contributing to the combination space: its slug and
// its options in defined sort order.
type axis struct {
	slug    string
	options []*attribute.Option
}

// expand computes the cartesian product of the axes. Axes are enumerated in
// the order supplied and options in their given order, so generation is
// deterministic for identical inputs. An empty axis list yields no
// combinations.
func expand(axes []axis) []map[string]string {
	if len(axes) == 0 {
		return nil
	}
	combos := []map[string]string{{}}
	for _, ax := range axes {
		next := make([]map[string]string, 0, len(combos)*len(ax.options))
		for _, c := range combos {
			for _, o := range ax.options {
				m := make(map[string]string, len(c)+1)
				for k, v := range c {
					m[k] = v
				}
				m[ax.slug] = o.Value
				next = append(next, m)
			}
		}
		combos = next
	}
	return combos
}

// combinationKey produces a canonical identity for an options map so
// duplicate combinations are detected regardless of attribute order.
func combinationKey(options map[string]string) string {
	slugs := make([]string, 0, len(options))
	for slug := range options {
		slugs = append(slugs, slug)
	}
	sort.Strings(slugs)
	var b strings.Builder
	for i, slug := range slugs {
		if i > 0 {
			b.WriteByte(';')
		}
		b.WriteString(slug)
		b.WriteByte('=')
		b.WriteString(options[slug])
	}
	return b.String()
}

// variationSKU derives a deterministic SKU for a combination from the base
// SKU and each axis's option code (falling back to a slug of the value).
func variationSKU(base string, axes []axis, options map[string]string) string {
	parts := make([]string, 0, len(axes)+1)
	parts = append(parts, base)
	for _, ax := range axes {
		value := options[ax.slug]
		part := attribute.Slugify(value)
		for _, o := range ax.options {
			if o.Value == value && o.Code != "" {
				part = o.Code
				break
			}
		}
		parts = append(parts, part)
	}
	return strings.Join(parts, "-")
}
