package sandbox

import (
	"fmt"
	"regexp"
	"strings"
)

// Widget sources arrive as ES module text but execute under the injected
// CommonJS-style container. normalizeSource rewrites the module surface
// (import/export statements) into exports/require calls; expression
// bodies are left untouched.

var (
	// Leading whitespace is horizontal only so a match never swallows the
	// newline of a preceding blank line
	reImportDefault = regexp.MustCompile(`(?m)^[ \t]*import\s+([A-Za-z_$][\w$]*)\s+from\s+['"]([^'"]+)['"];?`)
	reImportNamed   = regexp.MustCompile(`(?m)^[ \t]*import\s+\{([^}]*)\}\s+from\s+['"]([^'"]+)['"];?`)
	reImportMixed   = regexp.MustCompile(`(?m)^[ \t]*import\s+([A-Za-z_$][\w$]*)\s*,\s*\{([^}]*)\}\s+from\s+['"]([^'"]+)['"];?`)
	reImportStar    = regexp.MustCompile(`(?m)^[ \t]*import\s+\*\s+as\s+([A-Za-z_$][\w$]*)\s+from\s+['"]([^'"]+)['"];?`)
	reImportBare    = regexp.MustCompile(`(?m)^[ \t]*import\s+['"]([^'"]+)['"];?`)

	reExportDefault = regexp.MustCompile(`(?m)^[ \t]*export\s+default\s+`)
	reExportDecl    = regexp.MustCompile(`(?m)^[ \t]*export\s+(const|let|var|function|class)\s+([A-Za-z_$][\w$]*)`)
	reExportList    = regexp.MustCompile(`(?m)^[ \t]*export\s+\{([^}]*)\};?`)
)

func normalizeSource(src string) string {
	// Mixed default + named imports first, they would otherwise match the
	// default-import pattern partially
	src = reImportMixed.ReplaceAllString(src,
		`const $1 = __interop(require("$3")); const {$2} = require("$3");`)
	src = reImportStar.ReplaceAllString(src, `const $1 = require("$2");`)
	src = reImportNamed.ReplaceAllString(src, `const {$1} = require("$2");`)
	src = reImportDefault.ReplaceAllString(src, `const $1 = __interop(require("$2"));`)
	src = reImportBare.ReplaceAllString(src, `require("$1");`)

	src = reExportDefault.ReplaceAllString(src, `module.exports.default = `)

	// Exported declarations stay declarations; the binding is re-exported
	// after the module body runs
	var reexports []string
	src = reExportDecl.ReplaceAllStringFunc(src, func(m string) string {
		parts := reExportDecl.FindStringSubmatch(m)
		reexports = append(reexports, parts[2])
		return strings.TrimPrefix(strings.TrimLeft(m, " \t"), "export ")
	})

	src = reExportList.ReplaceAllStringFunc(src, func(m string) string {
		parts := reExportList.FindStringSubmatch(m)
		var out strings.Builder
		for _, name := range strings.Split(parts[1], ",") {
			name = strings.TrimSpace(name)
			if name == "" {
				continue
			}
			local, exported := name, name
			if idx := strings.Index(name, " as "); idx >= 0 {
				local = strings.TrimSpace(name[:idx])
				exported = strings.TrimSpace(name[idx+4:])
			}
			fmt.Fprintf(&out, "exports.%s = %s; ", exported, local)
		}
		return out.String()
	})

	if len(reexports) > 0 {
		var tail strings.Builder
		tail.WriteString("\n")
		for _, name := range reexports {
			fmt.Fprintf(&tail, "exports.%s = %s;\n", name, name)
		}
		src += tail.String()
	}

	return src
}
