// Copyright 2026 © The Aide Authors
// SPDX-License-Identifier: Apache-2.0

package intent

import "regexp"

// fallbackPattern maps a deterministic phrasing pattern to an intent
// label. The table is consulted only when the statistical model is not
// confident, so unseen phrasing cannot be silently misrouted into a
// wrong high-confidence label.
type fallbackPattern struct {
	re    *regexp.Regexp
	label string
}

var fallbackPatterns = []fallbackPattern{
	// System checks and control.
	{regexp.MustCompile(`(?i)(check|show|get).*(cpu|processor)`), "system_check"},
	{regexp.MustCompile(`(?i)(check|show|get).*(memory|ram)`), "system_check"},
	{regexp.MustCompile(`(?i)(check|show|get).*(battery)`), "system_check"},
	{regexp.MustCompile(`(?i)(check|show|get).*(disk|storage)`), "system_check"},
	{regexp.MustCompile(`(?i)(open|launch|start).*(browser|web)`), "system_control"},
	{regexp.MustCompile(`(?i)(open|launch|start).*(file\s*manager|explorer)`), "system_control"},
	{regexp.MustCompile(`(?i)(play|pause|stop).*(music|song)`), "play_music"},
	{regexp.MustCompile(`(?i)(set|adjust).*(volume)`), "play_music"},

	// Network and devops.
	{regexp.MustCompile(`(?i)(scan|sweep).*(network|port|subnet|host)`), "port_scan"},
	{regexp.MustCompile(`(?i)(deploy|restart|rebuild).*(app|service|container|image)`), "deploy"},

	// Weather and news.
	{regexp.MustCompile(`(?i)(what'?s?\s*the\s*)?(weather|temperature)`), "get_weather"},
	{regexp.MustCompile(`(?i)(weather\s*)?forecast`), "get_weather"},
	{regexp.MustCompile(`(?i)(latest\s*)?news`), "get_news"},

	// Search and questions.
	{regexp.MustCompile(`(?i)(search|look\s*up)\s+(.+)`), "search_web"},
	{regexp.MustCompile(`(?i)(what\s*is|who\s*is|tell\s*me\s*about)\s+(.+)`), "search_web"},

	// Files.
	{regexp.MustCompile(`(?i)(list|show|ls)\s*(files|directory|folder)`), "list_files"},
	{regexp.MustCompile(`(?i)(open|show)\s+(.+)`), "open_file"},

	// Reminders.
	{regexp.MustCompile(`(?i)(remind|set\s*reminder)`), "set_reminder"},
	{regexp.MustCompile(`(?i)what.*reminder`), "get_reminders"},

	// Small talk.
	{regexp.MustCompile(`(?i)^(hello|hi|hey|good\s*morning|good\s*evening)\b`), "greeting"},
	{regexp.MustCompile(`(?i)how\s*are\s*you`), "conversation"},
	{regexp.MustCompile(`(?i)(joke|make\s*me\s*laugh)`), "conversation"},
	{regexp.MustCompile(`(?i)^help\b`), "help"},
}

// matchFallback returns the first matching pattern's label, or "".
// Table order is significance order: specific families come before the
// catch-all open/show pattern.
func matchFallback(text string) string {
	for _, p := range fallbackPatterns {
		if p.re.MatchString(text) {
			return p.label
		}
	}
	return ""
}
