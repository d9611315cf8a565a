// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Mnemo Contributors

package engine

import "regexp"

// patternGroup is one vocabulary family that marks a turn as high impact.
type patternGroup struct {
	name     string
	patterns []*regexp.Regexp
}

// highImpactGroups are evaluated in order; the first match wins. The groups
// cover actions with blast radius beyond the conversation itself.
var highImpactGroups = []patternGroup{
	{
		name: "deploy",
		patterns: compile(
			`(?i)\bdeploy(ing|ment|s)?\b`,
			`(?i)\brelease(s|d)?\b`,
			`(?i)\bpublish(ing|ed)?\b`,
			`(?i)\broll(ing)?[ -]?out\b`,
			`(?i)\bship(ping)?\s+(it|to)\b`,
			`(?i)\bgo(ing)?\s+live\b`,
			`(?i)\bpush(ing)?\s+to\s+(prod|production|main|master)\b`,
		),
	},
	{
		name: "data",
		patterns: compile(
			`(?i)\bmigrat(e|ion|ing)\b`,
			`(?i)\bschema\s+change\b`,
			`(?i)\balter\s+table\b`,
			`(?i)\bdrop\s+(table|database|column)\b`,
			`(?i)\btruncat(e|ing)\b`,
			`(?i)\bdelet(e|ing)\s+(all|the)?\s*(data|rows|records)\b`,
			`(?i)\bwip(e|ing)\s+(the\s+)?(db|database|data)\b`,
		),
	},
	{
		name: "auth",
		patterns: compile(
			`(?i)\bsecrets?\b`,
			`(?i)\bcredentials?\b`,
			`(?i)\bapi[ -]?keys?\b`,
			`(?i)\btokens?\b`,
			`(?i)\bpasswords?\b`,
			`(?i)\bauth(entication|orization)?\b`,
			`(?i)\b(prod|production)\s+config\b`,
			`(?i)\brotat(e|ing)\s+(the\s+)?key\b`,
		),
	},
	{
		name: "broadcast",
		patterns: compile(
			`(?i)\bannounce(ment)?\b`,
			`(?i)\bbroadcast(ing)?\b`,
			`(?i)\bwebhooks?\b`,
			`(?i)\bsend(ing)?\s+to\s+(all|everyone|the\s+team)\b`,
			`(?i)\bemail\s+blast\b`,
			`(?i)\bpost(ing)?\s+(publicly|to\s+(slack|discord|twitter|x))\b`,
		),
	},
}

func compile(exprs ...string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, len(exprs))
	for i, expr := range exprs {
		out[i] = regexp.MustCompile(expr)
	}
	return out
}

// ClassifyIntent reports whether the turn text describes a high-impact
// action: deploy/release, data or schema mutation, auth/secret handling, or
// public broadcast. Deterministic and total; the empty string is low impact.
func ClassifyIntent(text string) bool {
	if text == "" {
		return false
	}
	for _, group := range highImpactGroups {
		for _, re := range group.patterns {
			if re.MatchString(text) {
				return true
			}
		}
	}
	return false
}
