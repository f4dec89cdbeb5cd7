// Package ai is the generative collaborator of the studio.
//
// A Completer turns a prompt into text. Client talks to any OpenAI-compatible
// chat completions endpoint; Mock reproduces the canned offline assistant.
// Parse sniffs completion text for a component array or a library intent and
// falls back to plain chat prose. Service bundles the studio features built on
// top: copilot chat, layout generation, mock data and handler code.
package ai
