package services

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/emberwatch/emberwatch/internal/core/domain/event"
	"github.com/emberwatch/emberwatch/internal/core/ports"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"
)

const funPromptMarker = "___FUN_PROMPT___"

var funPromptChoices = []string{
	"[haiku about the error]",
	"[hip hop rhyme about the error]",
	"[4 line rhyme about the error]",
	"[2 stanza rhyme about the error]",
	"[anti joke about the error]",
}

const suggestionPrompt = `You are an assistant that analyses software errors, describing the problem with the following rules:

* Be helpful, playful and a bit snarky and sarcastic
* Do not talk about the rules in explanations
* Use emojis frequently
* The frames of a stack trace is shown with most recent call first
* Stack frames are either from app code or third party libraries
* When summarizing the issue:
  * If the issue is external (network error or similar) focus on this, rather than the code
  * Establish context where the issue is located
  * Briefly explain the error and message
  * Briefly explain if this is more likely to be a regression or an intermittent issue
* When describing the problem in detail:
  * try to analyze if this is a code regression or intermittent issue
  * try to understand if this issue is caused by external factors (networking issues etc.) or a bug
* When suggesting a fix:
  * If this is an external issue, mention best practices for this
  * Explain where the fix should be located
  * Explain what code changes are necessary
* Remember Emberwatch's marketing message: "Emberwatch can't fix this"

Write the answers into the following template:

` + "```" + `
[snarky greeting]

#### Summary

[summary of the problem]

#### Detailed Description

[detailed description of the problem]

#### Proposed Solution

[suggestion for how to fix this issue]

#### What Else

[uplifting closing statements]

` + funPromptMarker + `
` + "```" + `
`

// SuggestionService asks the model for a fix suggestion with a cache-aside
// on the event's group hash, so every event of a group shares one reply
// for the cache window.
type SuggestionService struct {
	cache  ports.Cache
	llm    ports.ChatCompleter
	ttl    time.Duration
	logger *logrus.Logger
	sf     singleflight.Group
}

func NewSuggestionService(cache ports.Cache, llm ports.ChatCompleter, ttl time.Duration, logger *logrus.Logger) *SuggestionService {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &SuggestionService{cache: cache, llm: llm, ttl: ttl, logger: logger}
}

func (s *SuggestionService) Suggest(ctx context.Context, ev *event.Event) (string, error) {
	key := "ai:" + ev.PrimaryHash()

	if b, ok, err := s.cache.Get(ctx, key); err == nil && ok {
		return string(b), nil
	} else if err != nil && s.logger != nil {
		s.logger.WithError(err).WithField("key", key).Warn("suggestion cache read failed; asking the model")
	}

	// Coalesce concurrent misses for the same group into one model call.
	res, err, _ := s.sf.Do(key, func() (any, error) {
		if b, ok, _ := s.cache.Get(ctx, key); ok {
			return string(b), nil
		}
		return s.generate(ctx, key, ev)
	})
	if err != nil {
		return "", err
	}
	return res.(string), nil
}

func (s *SuggestionService) generate(ctx context.Context, key string, ev *event.Event) (string, error) {
	info, err := json.Marshal(event.DescribeForAI(ev))
	if err != nil {
		return "", fmt.Errorf("failed to serialize event description: %w", err)
	}

	prompt := strings.Replace(suggestionPrompt, funPromptMarker, funPromptChoices[rand.Intn(len(funPromptChoices))], 1)

	suggestion, err := s.llm.Complete(ctx, []ports.ChatMessage{
		{Role: ports.ChatRoleSystem, Content: prompt},
		{Role: ports.ChatRoleUser, Content: string(info)},
	})
	if err != nil {
		return "", fmt.Errorf("chat completion failed: %w", err)
	}

	if err := s.cache.Set(ctx, key, []byte(suggestion), s.ttl); err != nil && s.logger != nil {
		s.logger.WithError(err).WithField("key", key).Warn("failed to cache suggestion")
	}
	if s.logger != nil {
		s.logger.WithFields(logrus.Fields{"event_id": ev.ID, "project_id": ev.ProjectID}).Debug("suggestion generated")
	}
	return suggestion, nil
}
