/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

// Package googleexecutor runs single-turn collaborator calls against
// Gemini, through either the Gemini API or Vertex AI.
//
//	client, err := genai.NewClient(ctx, &genai.ClientConfig{
//	    APIKey:  key,
//	    Backend: genai.BackendGeminiAPI,
//	})
//	exec, err := googleexecutor.New[*reviewRequest](client, prompt,
//	    googleexecutor.WithModel[*reviewRequest]("gemini-2.5-flash"),
//	    googleexecutor.WithRole[*reviewRequest]("pm"),
//	)
//	feedback, err := exec.Execute(ctx, req)
package googleexecutor
