package assistant

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"museum-tour-server/domain/capability"
	"museum-tour-server/domain/entity"
)

var (
	fencedJSON = regexp.MustCompile("(?s)```json\\s*(.*?)\\s*```")
	bareJSON   = regexp.MustCompile(`(?s)\{.*\}`)
)

// Lookup 让模型联网检索对象信息，返回四个字段的简短描述
// 回复不是合法 JSON 时返回 (nil, nil)，由调用方决定如何处理
func (c *Client) Lookup(ctx context.Context, subject capability.Subject) (*capability.FactSheet, error) {
	out, err := c.call(ctx, "websearch", func(ctx context.Context) (interface{}, error) {
		return c.chat(ctx, factPrompt(subject))
	})
	if err != nil {
		return nil, err
	}

	text := out.(string)
	facts, err := parseFactSheet(text)
	if err != nil {
		c.log.Warn().Err(err).Str("subject", subject.Name).Str("response", text).Msg("[Assistant] ⚠️ 无法解析检索结果")
		return nil, nil
	}
	return facts, nil
}

// parseFactSheet 回复可能被包在 ```json 代码块里，也可能前后带有说明文字
func parseFactSheet(text string) (*capability.FactSheet, error) {
	raw := text
	if m := fencedJSON.FindStringSubmatch(text); m != nil {
		raw = m[1]
	} else if m := bareJSON.FindString(text); m != "" {
		raw = m
	}

	var facts capability.FactSheet
	if err := json.Unmarshal([]byte(strings.TrimSpace(raw)), &facts); err != nil {
		return nil, err
	}
	facts.Origin = strings.TrimSpace(facts.Origin)
	facts.Habitat = strings.TrimSpace(facts.Habitat)
	facts.Characteristics = strings.TrimSpace(facts.Characteristics)
	facts.InterestingFacts = strings.TrimSpace(facts.InterestingFacts)
	return &facts, nil
}

func factPrompt(s capability.Subject) string {
	var b strings.Builder
	if s.Kind == entity.ParentLocation {
		name := s.Name
		if s.Label != "" {
			name = fmt.Sprintf("%s (%s)", s.Name, s.Label)
		}
		fmt.Fprintf(&b, "Search the web for information about the garden exhibit \"%s\".\n\n", name)
		b.WriteString(`Please search for and extract concise information (2-3 sentences maximum per field) that would be interesting to visitors:
1. Origin: What is the history or inspiration of this exhibit? (1-2 sentences)
2. Habitat: What environment or climate does it recreate? (1-2 sentences)
3. Characteristics: What are its highlights and notable plants? (2-3 sentences)
4. Interesting Facts: One interesting fact (1-2 sentences)
`)
	} else {
		fmt.Fprintf(&b, "Search the web for botanical information about the plant \"%s\" (scientific name: %s).\n\n", s.Name, s.ScientificName)
		b.WriteString(`Please search for and extract concise botanical information (2-3 sentences maximum per field) that would be interesting to customers:
1. Origin: Where does this plant originate from? (1-2 sentences)
2. Habitat: What is its natural habitat? (1-2 sentences)
3. Characteristics: Key physical features and appearance (2-3 sentences)
4. Interesting Facts: One interesting botanical fact (1-2 sentences)
`)
	}
	b.WriteString(`
Format your response as JSON with the following structure:
{
  "origin": "brief description of origin",
  "habitat": "brief description of natural habitat",
  "characteristics": "brief description of physical characteristics",
  "interesting_facts": "one interesting fact"
}

Keep each field short and concise for mobile display. If you cannot find specific information for any field, use an empty string for that field. Only return valid JSON, no additional text.`)
	return b.String()
}
