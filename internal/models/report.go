package models

import "time"

// ReportGroup is the audit listing for one duplicate group.
type ReportGroup struct {
	MatchType    MatchType `json:"match_type"`
	Similarity   float64   `json:"similarity"`
	KeeperID     string    `json:"keeper_id"`
	KeeperName   string    `json:"keeper_name"`
	RemovalOrder []string  `json:"removal_order"`
	Bytes        int64     `json:"bytes"` // recoverable within this group
	Status       string    `json:"status,omitempty"`
}

// ReportFailure is one failed store action surfaced to the user.
type ReportFailure struct {
	ItemID string     `json:"item_id"`
	Type   ActionType `json:"type"`
	Reason string     `json:"reason"`
}

// Report is the run summary. It is a pure function of the plan and the
// optional execution result, so identical inputs render identically.
type Report struct {
	RunID            string            `json:"run_id"`
	Mode             RunMode           `json:"mode"`
	StartedAt        time.Time         `json:"started_at"`
	ItemsScanned     int               `json:"items_scanned"`
	GroupsFound      int               `json:"groups_found"`
	GroupsByType     map[MatchType]int `json:"groups_by_type"`
	ItemsPlanned     int               `json:"items_planned"`
	ItemsTrashed     int               `json:"items_trashed"` // live runs only
	BytesRecoverable int64             `json:"bytes_recoverable"`
	BytesTrashed     int64             `json:"bytes_trashed"` // live runs only
	Groups           []ReportGroup     `json:"groups"`
	Failures         []ReportFailure   `json:"failures,omitempty"`
	Fatal            bool              `json:"fatal,omitempty"`
	FatalErr         string            `json:"fatal_error,omitempty"`
}
