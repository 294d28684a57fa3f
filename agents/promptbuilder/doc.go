/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

/*
Package promptbuilder builds role prompts from developer-owned templates.

Templates contain {{name}} placeholders. Developer literals are bound with
BindStringLiteral, which only accepts untyped string constants. Everything
that came from a caller (requirements, specs, code, review feedback) is bound
through an encoder so that it is escaped before it reaches a model:

	p := promptbuilder.MustNewPrompt(`Review this code:
	{{code}}`)

	p, err := p.BindElement("code", "code", artifact)
	if err != nil {
		return err
	}
	text, err := p.Build()

BindElement wraps text in a single XML element. BindXML, BindJSON and
BindYAML marshal arbitrary values.

Prompts are immutable. Every Bind method returns a new Prompt, so package-level
templates are safe to share between concurrent pipeline runs.

Placeholders are resolved in a single pass, so bound values that themselves
contain {{...}} are never expanded.
*/
package promptbuilder
