// Package main (report.go) :
// These methods are for showing results and warnings.
package main

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
)

var (
	warnColor  = color.New(color.FgYellow)
	errorColor = color.New(color.FgRed)
)

// warnf : Show a warning to stderr.
func warnf(format string, a ...interface{}) {
	warnColor.Fprintf(color.Error, format, a...)
}

// setIndent : Set indent of each element using the maximum length of element.
// st is 2 dimensional array including values.
// k is the index of each element for setting indent.
func setIndent(st [][]string, k int) [][]string {
	maxLen := 0
	for _, e := range st {
		if len(e[k]) > maxLen {
			maxLen = len(e[k])
		}
	}
	for i, e := range st {
		st[i][k] = e[k] + strings.Repeat(" ", maxLen-len(e[k]))
	}
	return st
}

// getMsg : Convert 2D array to string using delimiter.
func getMsg(st [][]string, delim string) string {
	var temp []string
	for _, e := range st {
		temp = append(temp, strings.Join(e, delim))
	}
	return strings.Join(temp, "\n")
}

// playlistSummary : Summary of a written playlist.
func playlistSummary(pl *Playlist, path string, listed int) string {
	st := [][]string{
		{"Folder", pl.Name},
		{"Playlist", path},
		{"Files in folder", fmt.Sprint(listed)},
		{"Video files", fmt.Sprint(len(pl.Links))},
		{"Links which may require confirmation", fmt.Sprint(pl.Fallbacks())},
		{"Skipped video files", fmt.Sprint(pl.Skipped)},
	}
	return getMsg(setIndent(st, 0), " : ")
}
