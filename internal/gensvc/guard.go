package gensvc

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

// MinDescriptionLength is the shortest description worth synthesizing.
const MinDescriptionLength = 10

// MaxDescriptionLength bounds synthesis input.
const MaxDescriptionLength = 4000

// ErrDescriptionTooShort is returned for descriptions below the minimum.
var ErrDescriptionTooShort = fmt.Errorf("gensvc: description shorter than %d characters", MinDescriptionLength)

// ErrDescriptionTooLong is returned for descriptions above the maximum.
var ErrDescriptionTooLong = fmt.Errorf("gensvc: description longer than %d characters", MaxDescriptionLength)

// ErrInjectionSuspected is returned when a description matches a known
// prompt injection pattern.
var ErrInjectionSuspected = errors.New("gensvc: description resembles a prompt injection attempt")

// Heuristic prompt injection patterns checked before any model call.
var injectionPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)ignore\s+(all\s+)?(previous|prior|above)\s+(instructions?|prompts?|rules?|directions?)`),
	regexp.MustCompile(`(?i)disregard\s+(all\s+)?(previous|prior|above)\s+(instructions?|prompts?|rules?)`),
	regexp.MustCompile(`(?i)forget\s+(all\s+)?(previous|prior|above|your)\s+(instructions?|prompts?|rules?|context)`),
	regexp.MustCompile(`(?i)new\s+instructions?:\s*`),
	regexp.MustCompile(`(?i)system\s*:\s*you\s+are`),
	regexp.MustCompile(`(?i)\bdo\s+anything\s+now\b`),
	regexp.MustCompile(`(?i)\bjailbreak\b`),
	regexp.MustCompile(`(?i)pretend\s+you\s+(are|have)\s+no\s+(restrictions?|rules?|guidelines?)`),
	regexp.MustCompile(`(?i)reveal\s+(your|the)\s+(system\s+)?(prompt|instructions?)`),
}

// GuardDescription validates a free-text description before it is sent
// to the model. It enforces length bounds and rejects obvious prompt
// injection attempts.
func GuardDescription(description string) error {
	trimmed := strings.TrimSpace(description)
	if utf8.RuneCountInString(trimmed) < MinDescriptionLength {
		return ErrDescriptionTooShort
	}
	if utf8.RuneCountInString(trimmed) > MaxDescriptionLength {
		return ErrDescriptionTooLong
	}
	for _, re := range injectionPatterns {
		if re.MatchString(trimmed) {
			return ErrInjectionSuspected
		}
	}
	return nil
}
