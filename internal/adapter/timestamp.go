// Copyright (C) 2024 self-sensored contributors.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.
package adapter

import (
	"fmt"
	"time"
)

// timestampLayouts are tried in order. Vendor exports (Apple Health
// Auto Export and similar tools) emit "2025-09-18 10:00:00 -0500";
// the internal shape emits RFC3339 with milliseconds. Both are kept
// so a payload can mix the two across a migration window.
var timestampLayouts = []string{
	"2006-01-02 15:04:05 -0700",
	"2006-01-02 15:04:05.000 -0700",
	time.RFC3339Nano,
	time.RFC3339,
}

// parseTimestamp parses s against every known layout, preserving
// millisecond precision — spec.md §4.3 forbids collapsing to coarser
// precision anywhere in the adapter.
func parseTimestamp(s string) (time.Time, error) {
	var lastErr error
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		} else {
			lastErr = err
		}
	}
	return time.Time{}, fmt.Errorf("adapter: unparseable timestamp %q: %w", s, lastErr)
}
