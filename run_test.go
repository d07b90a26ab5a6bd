// Copyright © 2024 Nexus Window Systems
// Use is governed by a BSD-style license found in the LICENSE file.

package compositor

import (
	"testing"
	"time"
)

func TestToTimestampBreaksDownCalendarFields(t *testing.T) {
	tm := time.Date(2026, time.July, 30, 9, 5, 3, 0, time.UTC)
	got := toTimestamp(tm)
	want := timestamp{Year: 2026, Month: 7, Day: 30, Hour: 9, Minute: 5, Second: 3}
	if got != want {
		t.Fatalf("toTimestamp(%v) = %+v, want %+v", tm, got, want)
	}
}
