package cache

import (
	"strings"
	"testing"
)

func TestListingKey(t *testing.T) {
	tests := []struct {
		name   string
		page   int
		limit  int
		status string
		want   string
	}{
		{"first page all statuses", 1, 10, "", "challenges:page:1:limit:10:status:all"},
		{"status filter", 2, 6, "open", "challenges:page:2:limit:6:status:open"},
		{"completed filter", 3, 25, "completed", "challenges:page:3:limit:25:status:completed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ListingKey(tt.page, tt.limit, tt.status)
			if got != tt.want {
				t.Errorf("ListingKey(%d, %d, %q) = %q, want %q", tt.page, tt.limit, tt.status, got, tt.want)
			}
		})
	}
}

func TestListingKeyUnderInvalidationPrefix(t *testing.T) {
	// Every key must sit under the prefix InvalidateAll scans, otherwise a
	// mutation would leave stale pages behind
	key := ListingKey(7, 50, "ongoing")
	if !strings.HasPrefix(key, listingPrefix+":") {
		t.Errorf("key %q escapes the invalidation prefix %q", key, listingPrefix)
	}
}

func TestListingKeyDistinguishesPages(t *testing.T) {
	a := ListingKey(1, 10, "open")
	b := ListingKey(2, 10, "open")
	c := ListingKey(1, 20, "open")
	if a == b || a == c || b == c {
		t.Error("distinct page parameters must produce distinct keys")
	}
}
