package domain

import "time"

// Attachment is a processed file stored inline as a base64 data URI.
type Attachment struct {
	DataURI   string `json:"data_uri"`
	FileName  string `json:"file_name"`
	MimeType  string `json:"mime_type"`
	SizeBytes int64  `json:"size_bytes"`
}

// HistoryEntry is one append-only record in a ticket's timeline. Entries are
// never edited or removed; concurrent comments are independent inserts.
type HistoryEntry struct {
	ID          string
	TicketID    string
	AuthorID    string
	AuthorName  string
	Text        string
	Attachments []Attachment
	CreatedAt   time.Time
}
