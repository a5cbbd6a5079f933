package extract

import (
	"regexp"
	"strings"
)

var placeholderRe = regexp.MustCompile(`\{\{\s*([a-z_]+)\s*\}\}`)

// Interpolate substitutes {{name}} placeholders in a prompt template.
// Unknown placeholders are left in place so template typos are visible in
// the rendered prompt rather than silently dropped.
func Interpolate(template string, vars map[string]string) string {
	return placeholderRe.ReplaceAllStringFunc(template, func(m string) string {
		name := strings.Trim(m, "{} \t")
		if v, ok := vars[name]; ok {
			return v
		}
		return m
	})
}
