package api

// dateTimeFormat is used for RFC3339 timestamps in API payloads.
const dateTimeFormat = "2006-01-02T15:04:05.000Z07:00"

// Verse is one verse of scripture text.
type Verse struct {
	Reference string `json:"reference,omitempty"`
	Number    int    `json:"number,omitempty"`
	Text      string `json:"text"`
}

// Reading is a titled passage.
type Reading struct {
	Title        string  `json:"title"`
	Reference    string  `json:"reference,omitempty"`
	APIReference string  `json:"apiReference,omitempty"`
	Text         string  `json:"text"`
	Verses       []Verse `json:"verses,omitempty"`
}

// Saint describes a saint from the calendar.
type Saint struct {
	Name        string   `json:"name"`
	FeastDay    string   `json:"feastDay"`
	Rank        string   `json:"rank"`
	Patronage   []string `json:"patronage,omitempty"`
	Iconography string   `json:"iconography,omitempty"`
	Biography   string   `json:"biography,omitempty"`
}

// Day is the liturgical day payload.
type Day struct {
	Date           string    `json:"date"`
	Title          string    `json:"title"`
	Season         string    `json:"season"`
	Color          string    `json:"color"`
	Rank           string    `json:"rank"`
	Commemorations []string  `json:"commemorations,omitempty"`
	Saint          *Saint    `json:"saint,omitempty"`
	Readings       []Reading `json:"readings"`
	Degraded       bool      `json:"degraded"`
	Archived       bool      `json:"archived,omitempty"`
	Link           string    `json:"link,omitempty"`
}

// ScriptureResponse wraps a single resolved passage.
type ScriptureResponse struct {
	Reading Reading `json:"reading"`
}

// SearchResponse lists search results.
type SearchResponse struct {
	Query   string    `json:"query"`
	Results []Reading `json:"results"`
}

// SaintsResponse lists the saints celebrated on a feast day.
type SaintsResponse struct {
	FeastDay string  `json:"feastDay"`
	Saints   []Saint `json:"saints"`
}

// DaySummary is one row of the archive history.
type DaySummary struct {
	Date     string `json:"date"`
	Title    string `json:"title"`
	Season   string `json:"season"`
	Color    string `json:"color"`
	Rank     string `json:"rank"`
	Saint    string `json:"saint,omitempty"`
	Degraded bool   `json:"degraded"`
	SavedAt  string `json:"savedAt,omitempty"`
}

// HistoryResponse lists archived days.
type HistoryResponse struct {
	Days []DaySummary `json:"days"`
}

// LiturgyStatus reports the assembler state.
type LiturgyStatus struct {
	State     string `json:"state"`
	Title     string `json:"title,omitempty"`
	Date      string `json:"date,omitempty"`
	Archived  bool   `json:"archived,omitempty"`
	Error     string `json:"error,omitempty"`
	UpdatedAt string `json:"updatedAt,omitempty"`
}

// ScriptureCacheStatus reports scripture cache counters.
type ScriptureCacheStatus struct {
	Entries    int    `json:"entries"`
	MaxEntries int    `json:"maxEntries"`
	Hits       uint64 `json:"hits"`
	Misses     uint64 `json:"misses"`
	Evictions  uint64 `json:"evictions"`
}

// ImageCacheStatus reports image cache counters.
type ImageCacheStatus struct {
	Dir           string `json:"dir,omitempty"`
	MemoryEntries int    `json:"memoryEntries"`
	MaxEntries    int    `json:"maxEntries"`
	MemoryHits    uint64 `json:"memoryHits"`
	DiskHits      uint64 `json:"diskHits"`
	Misses        uint64 `json:"misses"`
}

// Status aggregates runtime information for /api/status.
type Status struct {
	Running        bool                 `json:"running"`
	PID            int                  `json:"pid"`
	ArchivePath    string               `json:"archivePath,omitempty"`
	LockFilePath   string               `json:"lockFilePath,omitempty"`
	Liturgy        LiturgyStatus        `json:"liturgy"`
	ScriptureCache ScriptureCacheStatus `json:"scriptureCache"`
	ImageCache     *ImageCacheStatus    `json:"imageCache,omitempty"`
}

// Event is one message on the /api/events stream.
type Event struct {
	Type      string        `json:"type"`
	Liturgy   LiturgyStatus `json:"liturgy"`
	Timestamp string        `json:"timestamp"`
}

// CacheClearResponse reports how many cached entries were dropped.
type CacheClearResponse struct {
	Dropped int `json:"dropped"`
}

// ErrorResponse is the body of every non-2xx JSON reply.
type ErrorResponse struct {
	Error string `json:"error"`
	// Retryable is set when the same request may succeed later.
	Retryable bool `json:"retryable,omitempty"`
}
