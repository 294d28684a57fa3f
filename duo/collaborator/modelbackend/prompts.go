/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package modelbackend

import "chainguard.dev/duoforge/agents/promptbuilder"

var (
	pmPersona = promptbuilder.MustNewPrompt(`You are an experienced product manager.
You turn requirements into clear specifications and review code against them.
When code fully meets the specification, say so plainly (for example "Looks good, approved").
When it does not, list the problems and mark anything blocking as critical.`)

	swePersona = promptbuilder.MustNewPrompt(`You are a senior software engineer.
You implement specifications completely and return every file in this format:

### File: <relative/path>
` + "```<language>" + `
<file contents>
` + "```" + `

Return the whole codebase each time, not a diff.`)

	judgePrompt = promptbuilder.MustNewPrompt(`Check the requirements below against this checklist of sections:
{{checklist}}

{{requirements}}

Reply with the names of the sections the requirements do not address, separated by commas.
If every section is addressed, reply with exactly "None".`)

	draftPrompt = promptbuilder.MustNewPrompt(`Write a detailed specification for the requirements below.
Cover screens and pages with their elements, workflows across screens, data flow and endpoints,
the module and component layout, and architecture recommendations.
Do not ask for approval; the specification goes straight to implementation.

{{requirements}}`)

	implementPrompt = promptbuilder.MustNewPrompt(`Implement the following specification.

{{spec}}`)

	revisePrompt = promptbuilder.MustNewPrompt(`Revise your implementation of the specification below.
Address every point of the product manager's feedback and return the full updated codebase.

{{spec}}

{{feedback}}

{{previous_code}}`)

	reviewPrompt = promptbuilder.MustNewPrompt(`Review the code below against the specification.

{{spec}}

{{code}}`)
)

// JudgeRequest asks which checklist sections the requirements miss.
type JudgeRequest struct {
	Requirements string
	Checklist    []string
}

func (r *JudgeRequest) Bind(p *promptbuilder.Prompt) (*promptbuilder.Prompt, error) {
	p, err := p.BindElement("requirements", "requirements", r.Requirements)
	if err != nil {
		return nil, err
	}
	return p.BindYAML("checklist", r.Checklist)
}

// DraftRequest asks for a specification.
type DraftRequest struct {
	Requirements string
}

func (r *DraftRequest) Bind(p *promptbuilder.Prompt) (*promptbuilder.Prompt, error) {
	return p.BindElement("requirements", "requirements", r.Requirements)
}

// ImplementRequest asks for a first implementation.
type ImplementRequest struct {
	Spec string
}

func (r *ImplementRequest) Bind(p *promptbuilder.Prompt) (*promptbuilder.Prompt, error) {
	return p.BindElement("spec", "specification", r.Spec)
}

// ReviseRequest asks for an implementation that addresses review feedback.
type ReviseRequest struct {
	Spec         string
	Feedback     string
	PreviousCode string
}

func (r *ReviseRequest) Bind(p *promptbuilder.Prompt) (*promptbuilder.Prompt, error) {
	p, err := p.BindElement("spec", "specification", r.Spec)
	if err != nil {
		return nil, err
	}
	if p, err = p.BindElement("feedback", "feedback", r.Feedback); err != nil {
		return nil, err
	}
	return p.BindElement("previous_code", "previous_code", r.PreviousCode)
}

// ReviewRequest asks the PM to review code.
type ReviewRequest struct {
	Spec string
	Code string
}

func (r *ReviewRequest) Bind(p *promptbuilder.Prompt) (*promptbuilder.Prompt, error) {
	p, err := p.BindElement("spec", "specification", r.Spec)
	if err != nil {
		return nil, err
	}
	return p.BindElement("code", "code", r.Code)
}
