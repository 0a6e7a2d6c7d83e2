// Package main (errors.go) :
// Errors reported while resolving targets and building links.
package main

import "errors"

var (
	// ErrInvalidInput : The input is neither a known share URL nor a file ID.
	ErrInvalidInput = errors.New("invalid input")

	// ErrNetwork : The request to Google Drive failed at the transport level.
	ErrNetwork = errors.New("network error")

	// ErrBypassExtractionFailed : The virus scan warning page had no usable confirm token.
	ErrBypassExtractionFailed = errors.New("confirm token could not be extracted")

	// ErrNoVideoFiles : The folder has no video files.
	ErrNoVideoFiles = errors.New("no video files were found")

	ErrNotFound      = errors.New("file was not found")
	ErrNotAccessible = errors.New("file cannot be downloaded")

	// ErrNoCredentials : Neither an API key nor OAuth credentials are available.
	ErrNoCredentials = errors.New("no credentials")
)
