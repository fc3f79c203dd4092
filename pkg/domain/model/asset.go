package model

import "time"

// FetchResult represents the result of a bundle download and extraction.
type FetchResult struct {
	Dir     string   // Directory the bundle was extracted into
	Files   []string // Extracted file paths, relative to Dir
	Size    int64    // Total extracted size in bytes
	Version string   // Upstream version the bundle came from
}

// AssetVersion is the stamp written next to the extracted bundle so the
// served assets can report where they came from.
type AssetVersion struct {
	Package   string    `json:"package"`
	Version   string    `json:"version"`
	FetchedAt time.Time `json:"fetched_at"`
}
