// Package main (playlist.go) :
// These methods are for creating an M3U playlist from the video files in a shared folder.
package main

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/cheggaaa/pb"
	"github.com/grafov/m3u8"
)

const (
	videoMimePrefix = "video/"
	playlistExt     = ".m3u"
)

// Entry : A file in the folder listing.
type Entry struct {
	ID       string
	Name     string
	MimeType string
}

func (e Entry) displayName() string {
	if e.Name != "" {
		return e.Name
	}
	return e.ID
}

// DownloadLink : Direct link of a file.
type DownloadLink struct {
	FileID      string
	DisplayName string
	URL         string
	// Fallback is true when no page token was found, so URL may still ask for confirmation.
	Fallback bool
}

// Playlist : Links of the video files in a folder.
type Playlist struct {
	Name  string
	Links []DownloadLink
	// Skipped is the number of video files which could not be accessed.
	Skipped int
}

// PlaylistBuilder : Structure for building a playlist.
type PlaylistBuilder struct {
	Negotiator linkNegotiator
	Strict     bool
	Progress   bool
}

// filterVideos : Retrieve only video files keeping the order.
func filterVideos(entries []Entry) []Entry {
	var videos []Entry
	for _, e := range entries {
		if strings.HasPrefix(e.MimeType, videoMimePrefix) {
			videos = append(videos, e)
		}
	}
	return videos
}

// Build : Negotiate the direct link of each video file in order. A file which
// is not found or not accessible is skipped with a warning.
func (b *PlaylistBuilder) Build(name string, entries []Entry) (*Playlist, error) {
	videos := filterVideos(entries)
	if len(videos) == 0 {
		return nil, fmt.Errorf("%w in the folder '%s'", ErrNoVideoFiles, name)
	}
	var bar *pb.ProgressBar
	if b.Progress {
		bar = pb.New(len(videos))
		bar.Output = os.Stderr
		bar.Prefix("Resolving ")
		bar.Start()
	}
	pl := &Playlist{Name: name}
	for _, e := range videos {
		e.Name = e.displayName()
		link, err := DirectLink(b.Negotiator, e, b.Strict)
		switch {
		case err == nil:
			pl.Links = append(pl.Links, link)
		case errors.Is(err, ErrNotFound) || errors.Is(err, ErrNotAccessible):
			warnf("!! '%s' was skipped: %v\n", e.Name, err)
			pl.Skipped++
		default:
			if bar != nil {
				bar.Finish()
			}
			return nil, err
		}
		if bar != nil {
			bar.Increment()
		}
	}
	if bar != nil {
		bar.Finish()
	}
	if len(pl.Links) == 0 {
		return nil, fmt.Errorf("%w in the folder '%s': %d video file(s) could not be accessed", ErrNoVideoFiles, name, pl.Skipped)
	}
	return pl, nil
}

// Fallbacks : Number of links which may still require confirmation.
func (p *Playlist) Fallbacks() int {
	n := 0
	for _, l := range p.Links {
		if l.Fallback {
			n++
		}
	}
	return n
}

// WriteTo : Write the playlist as M3U.
func (p *Playlist) WriteTo(w io.Writer) (int64, error) {
	var buf bytes.Buffer
	buf.WriteString("#EXTM3U\n")
	for _, l := range p.Links {
		fmt.Fprintf(&buf, "#EXTINF:-1,%s\n%s\n", oneLine(l.DisplayName), l.URL)
	}
	return buf.WriteTo(w)
}

// Save : Save the playlist as "<dir>/<name>.m3u". An existing file is overwritten.
func (p *Playlist) Save(dir string) (string, error) {
	if len(p.Links) == 0 {
		return "", fmt.Errorf("%w in the folder '%s'", ErrNoVideoFiles, p.Name)
	}
	path := filepath.Join(dir, playlistFilename(p.Name))
	file, err := os.Create(path)
	if err != nil {
		return "", err
	}
	if _, err := p.WriteTo(file); err != nil {
		file.Close()
		return "", err
	}
	return path, file.Close()
}

func playlistFilename(name string) string {
	name = strings.TrimSpace(strings.NewReplacer("/", "_", "\\", "_").Replace(oneLine(name)))
	if name == "" || name == "." || name == ".." {
		name = "playlist"
	}
	return name + playlistExt
}

func oneLine(s string) string {
	return strings.NewReplacer("\r\n", " ", "\n", " ", "\r", " ").Replace(s)
}

// ReadPlaylist : Read the segments of a playlist file.
func ReadPlaylist(path string) ([]*m3u8.MediaSegment, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	pl, listType, err := m3u8.DecodeFrom(bufio.NewReader(f), false)
	if err != nil {
		return nil, err
	}
	if listType != m3u8.MEDIA {
		return nil, fmt.Errorf("'%s' is not a media playlist", path)
	}
	var segs []*m3u8.MediaSegment
	for _, seg := range pl.(*m3u8.MediaPlaylist).Segments {
		if seg == nil {
			continue
		}
		segs = append(segs, seg)
	}
	return segs, nil
}
