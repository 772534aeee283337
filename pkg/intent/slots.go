// Copyright 2026 © The Aide Authors
// SPDX-License-Identifier: Apache-2.0

package intent

import (
	"regexp"
	"strings"
)

var (
	queryRe    = regexp.MustCompile(`(?i)(?:search(?:\s+for)?|look\s*up|what\s+is|who\s+is|tell\s*me\s*about|find\s+information\s+about)\s+(.+)`)
	cityRe     = regexp.MustCompile(`(?i)(?:weather|temperature|forecast).*?\b(?:in|at|for)\s+([a-z][a-z\s]+?)[?.!]?$`)
	filenameRe = regexp.MustCompile(`(?i)(?:open|show)\s+(.+?)[?.!]?$`)
	reminderRe = regexp.MustCompile(`(?i)(?:remind\s+me\s+to|remember\s+to|don'?t\s+forget\s+to)\s+(.+?)[?.!]?$`)
	targetRe   = regexp.MustCompile(`(?i)(?:scan|sweep)\s+(?:the\s+)?(.+?)(?:\s+for\s+.+)?[?.!]?$`)

	pronounRe = regexp.MustCompile(`(?i)\b(it|that|there|them)\b`)
)

// extractSlots pulls named values out of the text for the given label.
// Absent slots are omitted from the map, never set to a placeholder.
func extractSlots(label, text string) map[string]string {
	slots := make(map[string]string)
	switch label {
	case "search_web":
		if m := queryRe.FindStringSubmatch(text); m != nil {
			slots["query"] = strings.TrimSpace(strings.TrimRight(m[1], "?.!"))
		}
	case "get_weather":
		if m := cityRe.FindStringSubmatch(text); m != nil {
			slots["city"] = strings.TrimSpace(m[1])
		}
	case "open_file":
		if m := filenameRe.FindStringSubmatch(text); m != nil {
			slots["filename"] = strings.TrimSpace(m[1])
		}
	case "set_reminder":
		if m := reminderRe.FindStringSubmatch(text); m != nil {
			slots["reminder"] = strings.TrimSpace(m[1])
		}
	case "port_scan":
		if m := targetRe.FindStringSubmatch(text); m != nil {
			slots["target"] = strings.TrimSpace(m[1])
		}
	}

	for k, v := range slots {
		if v == "" {
			delete(slots, k)
		}
	}
	return slots
}

// resolveWithContext fills the topic slot from recent memory hits when
// the text leans on a bare pronoun. Context may only adjust slots; the
// chosen label is never overridden by it.
func resolveWithContext(slots map[string]string, text string, recentContext []string) {
	if len(recentContext) == 0 {
		return
	}
	if _, ok := slots["topic"]; ok {
		return
	}
	if !pronounRe.MatchString(text) {
		return
	}
	for _, prior := range recentContext {
		prior = strings.TrimSpace(prior)
		if prior != "" {
			slots["topic"] = prior
			return
		}
	}
}
