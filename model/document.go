package model

import (
	"time"
)

// DocumentKind distinguishes top-level posts from replies.
type DocumentKind string

const (
	DocumentKindPost  DocumentKind = "post"
	DocumentKindReply DocumentKind = "reply"
)

// Document represents a single ingested forum document.
// Documents are immutable once ingested; the whole corpus is rebuilt from
// source on every ingestion run.
type Document struct {
	ID        string       `json:"id"`
	Title     string       `json:"title,omitempty"`
	Content   string       `json:"content"`
	Author    string       `json:"author,omitempty"`
	Community string       `json:"community,omitempty"`
	Kind      DocumentKind `json:"kind"`
	Metadata  Metadata     `json:"metadata,omitempty"`
	CreatedAt time.Time    `json:"created_at"`
}

// Author represents a document author node.
type Author struct {
	Name          string `json:"name"`
	DocumentCount int    `json:"document_count"`
}

// Community represents a community (e.g. a subreddit) node.
type Community struct {
	Name          string `json:"name"`
	DocumentCount int    `json:"document_count"`
}
