// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Mnemo Contributors

package engine

import (
	"os"

	"gopkg.in/yaml.v3"

	mnemoerr "github.com/mnemo-dev/mnemo/pkg/errors"
)

// seedFile is the on-disk shape of a policy seed file:
//
//	rules:
//	  - id: post-deploy-smoke
//	    content: Run the smoke suite after every deploy
//	    subject: project
//	    tags: [policy, deploy]
type seedFile struct {
	Rules []seedRule `yaml:"rules"`
}

type seedRule struct {
	ID      string   `yaml:"id"`
	Content string   `yaml:"content"`
	Subject string   `yaml:"subject"`
	Tags    []string `yaml:"tags"`
}

// LoadSeedRules parses a yaml rules file into policy rules at full trust
// (score 1.0). Rules without a governance tag get "policy" appended so they
// qualify for checklist construction. Rules missing an id or content are
// rejected.
func LoadSeedRules(path string) ([]PolicyRule, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, mnemoerr.Wrapf(err, mnemoerr.CodeEnginePolicySeedInvalid, "reading policy seed %s", path)
	}

	var f seedFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, mnemoerr.Wrapf(err, mnemoerr.CodeEnginePolicySeedInvalid, "parsing policy seed %s", path)
	}

	rules := make([]PolicyRule, 0, len(f.Rules))
	for i, sr := range f.Rules {
		if sr.ID == "" || sr.Content == "" {
			return nil, mnemoerr.Errorf(mnemoerr.CodeEnginePolicySeedInvalid,
				"policy seed %s: rule %d missing id or content", path, i)
		}

		rule := PolicyRule{
			ID:      sr.ID,
			Content: sr.Content,
			Subject: sr.Subject,
			Tags:    sr.Tags,
			Score:   1.0,
		}
		if !rule.HasAnyTag(governanceTags...) {
			rule.Tags = append(rule.Tags, "policy")
		}
		rules = append(rules, rule)
	}

	return rules, nil
}
