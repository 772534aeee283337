// Copyright 2026 © The Aide Authors
// SPDX-License-Identifier: Apache-2.0

package core

// IntentUnknown is the label produced when classification cannot commit
// to any known intent. Callers should ask for clarification rather than
// treat it as an error.
const IntentUnknown = "unknown"

// Intent is the classified purpose of a free-form instruction. Slots hold
// values extracted from the text; absent slots are omitted, never set to
// a placeholder.
type Intent struct {
	Label      string
	Confidence float64
	Slots      map[string]string
}

// Slot returns the named slot value, or "" when not extracted.
func (i *Intent) Slot(name string) string {
	if i == nil || i.Slots == nil {
		return ""
	}
	return i.Slots[name]
}
