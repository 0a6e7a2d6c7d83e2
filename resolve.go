// Package main (resolve.go) :
// These methods are for retrieving a file or folder ID from an inputted URL.
package main

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

// Kind : Kind of a target on Google Drive.
type Kind int

const (
	KindFile Kind = iota
	KindFolder
)

func (k Kind) String() string {
	if k == KindFolder {
		return "folder"
	}
	return "file"
}

// Target : A file or folder on Google Drive.
type Target struct {
	ID   string
	Kind Kind
	// Bare is true when the input was a literal ID, so Kind was assumed.
	Bare bool
}

var (
	fileURL   = regexp.MustCompile(`/file/d/([a-zA-Z0-9_-]+)`)
	folderURL = regexp.MustCompile(`/drive/(?:u/\d+/)?folders/([a-zA-Z0-9_-]+)`)
	validID   = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)
)

// ParseTarget : Parse inputted URL or ID.
func ParseTarget(s string) (Target, error) {
	s = strings.TrimSpace(s)
	if m := fileURL.FindStringSubmatch(s); m != nil {
		return Target{ID: m[1], Kind: KindFile}, nil
	}
	if m := folderURL.FindStringSubmatch(s); m != nil {
		return Target{ID: m[1], Kind: KindFolder}, nil
	}
	if strings.Contains(s, "/") {
		if u, err := url.Parse(s); err == nil {
			if id := u.Query().Get("id"); validID.MatchString(id) {
				return Target{ID: id, Kind: KindFile}, nil
			}
		}
		return Target{}, fmt.Errorf("%w: '%s' has no file or folder ID", ErrInvalidInput, s)
	}
	if !validID.MatchString(s) {
		return Target{}, fmt.Errorf("%w: '%s' is not a file or folder ID", ErrInvalidInput, s)
	}
	return Target{ID: s, Kind: KindFile, Bare: true}, nil
}
