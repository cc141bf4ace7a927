package models

import "time"

// LibraryItem is one media asset known to the external library.
// Items are read-only inside the dedup pipeline; the store is only
// mutated through trash/tag requests issued by the executor.
type LibraryItem struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Ext         string    `json:"ext,omitempty"`
	Fingerprint string    `json:"fingerprint,omitempty"` // empty when the item was never fingerprinted
	Tags        []string  `json:"tags,omitempty"`
	Folders     []string  `json:"folders,omitempty"`
	Size        int64     `json:"size,omitempty"`     // bytes, 0 when unknown
	Duration    float64   `json:"duration,omitempty"` // seconds, 0 when unknown
	Bitrate     int64     `json:"bitrate,omitempty"`  // bits/s, 0 when unknown
	Width       int       `json:"width,omitempty"`
	Height      int       `json:"height,omitempty"`
	CreatedAt   time.Time `json:"created_at,omitzero"`
	ModifiedAt  time.Time `json:"modified_at,omitzero"`
}

// HasFingerprint reports whether the fingerprinting collaborator has
// processed this item.
func (it *LibraryItem) HasFingerprint() bool {
	return it.Fingerprint != ""
}

// HasSize reports whether the store provided a file size.
func (it *LibraryItem) HasSize() bool { return it.Size > 0 }

// HasDuration reports whether the store provided a duration.
func (it *LibraryItem) HasDuration() bool { return it.Duration > 0 }

// HasBitrate reports whether the store provided a bitrate.
func (it *LibraryItem) HasBitrate() bool { return it.Bitrate > 0 }

// HasResolution reports whether the store provided pixel dimensions.
func (it *LibraryItem) HasResolution() bool { return it.Width > 0 && it.Height > 0 }

// Resolution returns the pixel count, 0 when unknown.
func (it *LibraryItem) Resolution() int64 {
	if !it.HasResolution() {
		return 0
	}
	return int64(it.Width) * int64(it.Height)
}

// SignalCount counts the quality signals present on the item. Used as
// the metadata-completeness criterion when picking a keeper.
func (it *LibraryItem) SignalCount() int {
	n := 0
	if it.HasSize() {
		n++
	}
	if it.HasDuration() {
		n++
	}
	if it.HasBitrate() {
		n++
	}
	if it.HasResolution() {
		n++
	}
	return n
}

// ItemIndex builds an id lookup over an item snapshot.
func ItemIndex(items []*LibraryItem) map[string]*LibraryItem {
	idx := make(map[string]*LibraryItem, len(items))
	for _, it := range items {
		idx[it.ID] = it
	}
	return idx
}
