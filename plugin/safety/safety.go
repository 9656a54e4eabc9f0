// Package safety screens chat input for crisis topics the guide must not
// improvise on. A flagged turn is declined before it reaches the model, and
// the persona's safety line redirects the user toward professional help
// instead. The screen is deliberately coarse; erring toward a caring
// redirect is the intended behavior.
package safety

import "strings"

// Result is the outcome of one screen pass. Topic names the matched group
// for logging; it is never shown to the user.
type Result struct {
	Flagged bool
	Topic   string
}

var topics = []struct {
	name    string
	phrases []string
}{
	{
		name: "self-harm",
		phrases: []string{
			"kill myself",
			"end my life",
			"suicid",
			"hurt myself",
			"self-harm",
			"self harm",
			"don't want to be alive",
			"better off without me",
		},
	},
	{
		name: "harm-to-others",
		phrases: []string{
			"hurt someone",
			"hurt them",
			"make them pay",
			"kill him",
			"kill her",
			"kill them",
		},
	},
	{
		name: "substance-crisis",
		phrases: []string{
			"overdose",
			"take all my pills",
		},
	},
}

// Screen checks one user message. Matching is case-insensitive substring
// search over the normalized text; the first matching topic wins.
func Screen(text string) Result {
	normalized := strings.ToLower(text)
	for _, topic := range topics {
		for _, phrase := range topic.phrases {
			if strings.Contains(normalized, phrase) {
				return Result{Flagged: true, Topic: topic.name}
			}
		}
	}
	return Result{}
}
