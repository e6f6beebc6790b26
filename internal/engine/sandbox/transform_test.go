package sandbox

import (
	"strings"
	"testing"
)

func TestNormalizeSource(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []string
	}{
		{
			"default import",
			`import Button from "./button";`,
			[]string{`const Button = __interop(require("./button"));`},
		},
		{
			"named import",
			`import { h, Fragment } from "runtime";`,
			[]string{`const { h, Fragment } = require("runtime");`},
		},
		{
			"mixed import",
			`import React, { useState } from "runtime";`,
			[]string{
				`const React = __interop(require("runtime"));`,
				`const { useState } = require("runtime");`,
			},
		},
		{
			"star import",
			`import * as helpers from "./helpers";`,
			[]string{`const helpers = require("./helpers");`},
		},
		{
			"bare import",
			`import "./theme.css";`,
			[]string{`require("./theme.css");`},
		},
		{
			"default export",
			`export default function App() {}`,
			[]string{`module.exports.default = function App() {}`},
		},
		{
			"declaration export",
			"export const size = 4;",
			[]string{"const size = 4;", "exports.size = size;"},
		},
		{
			"declaration export after blank line",
			"const base = 2;\n\nexport const size = base * 2;\n\nexport function area() { return size; }",
			[]string{
				"const size = base * 2;",
				"function area() { return size; }",
				"exports.size = size;",
				"exports.area = area;",
			},
		},
		{
			"default export after blank line",
			"const App = () => null;\n\nexport default App;",
			[]string{"module.exports.default = App;"},
		},
		{
			"import after blank line",
			"// widget entry\n\nimport Button from \"./button\";",
			[]string{`const Button = __interop(require("./button"));`},
		},
		{
			"list export with rename",
			"const a = 1;\nexport { a as alpha };",
			[]string{"exports.alpha = a;"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := normalizeSource(tt.in)
			for _, want := range tt.want {
				if !strings.Contains(got, want) {
					t.Errorf("normalizeSource(%q) = %q, missing %q", tt.in, got, want)
				}
			}
			if strings.Contains(got, "import ") || strings.Contains(got, "export ") {
				t.Errorf("normalizeSource(%q) left module syntax: %q", tt.in, got)
			}
		})
	}
}
