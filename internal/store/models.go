package store

import "time"

// Resolution is one recorded folder lookup.
type Resolution struct {
	ID         int64
	Query      string
	Root       string
	FolderPath string
	Score      int
	Exact      bool
	Success    bool
	FileCount  int
	Source     string // cli, mcp, tui or agent
	CreatedAt  time.Time
}

// Session is a finished agent session and what it printed.
type Session struct {
	ID         string
	Agent      string
	Query      string
	Transcript []string
	StartedAt  time.Time
	EndedAt    time.Time
}
