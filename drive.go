// Package main (drive.go) :
// These methods are for retrieving file information and the file list of a
// shared folder using Drive API.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	getfilelist "github.com/tanaikech/go-getfilelist"
	drive "google.golang.org/api/drive/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

const folderMimeType = "application/vnd.google-apps.folder"

// driveService : Metadata and listing of files on Google Drive.
type driveService interface {
	FileMetadata(id string) (*drive.File, error)
	ListFolder(id string, recursive bool) (string, []Entry, error)
}

// driveClient : driveService using Drive API v3.
type driveClient struct {
	srv *drive.Service
}

// folderGroup : Files directly under one folder. depth is 0 for the searched folder.
type folderGroup struct {
	depth int
	files []*drive.File
}

// newDriveClient : Create the Drive API service with the credential provider.
func newDriveClient(ctx context.Context, cred credentialProvider) (*driveClient, error) {
	opts, err := cred.ClientOptions(ctx)
	if err != nil {
		return nil, err
	}
	srv, err := drive.NewService(ctx, append(opts, option.WithUserAgent(appname))...)
	if err != nil {
		return nil, err
	}
	return &driveClient{srv: srv}, nil
}

// FileMetadata : Retrieve file information.
func (d *driveClient) FileMetadata(id string) (*drive.File, error) {
	fields := []googleapi.Field{"createdTime,id,md5Checksum,mimeType,modifiedTime,name,owners,parents,shared,size,webContentLink,webViewLink"}
	res, err := d.srv.Files.Get(id).SupportsAllDrives(true).Fields(fields...).Do()
	if err != nil {
		return nil, driveError(id, err)
	}
	return res, nil
}

// ListFolder : Retrieve the name of folder and the files in it.
func (d *driveClient) ListFolder(id string, recursive bool) (string, []Entry, error) {
	fileList, err := getfilelist.Folder(id).Do(d.srv)
	if err != nil {
		return "", nil, driveError(id, err)
	}
	if fileList.SearchedFolder == nil {
		return "", nil, fmt.Errorf("%w: folder ID [ %s ]", ErrNotFound, id)
	}
	var groups []folderGroup
	for _, e := range fileList.FileList {
		groups = append(groups, folderGroup{depth: len(e.FolderTree) - 1, files: e.Files})
	}
	return fileList.SearchedFolder.Name, flattenGroups(groups, recursive), nil
}

// flattenGroups : Convert the folder tree to the ordered entries. Sub folders
// are skipped unless recursive is set.
func flattenGroups(groups []folderGroup, recursive bool) []Entry {
	var entries []Entry
	for _, g := range groups {
		if !recursive && g.depth > 0 {
			continue
		}
		for _, f := range g.files {
			if f.MimeType == folderMimeType {
				continue
			}
			entries = append(entries, Entry{ID: f.Id, Name: f.Name, MimeType: f.MimeType})
		}
	}
	return entries
}

// driveError : Convert "not found" of Drive API to ErrNotFound.
func driveError(id string, err error) error {
	var gerr *googleapi.Error
	if errors.As(err, &gerr) && gerr.Code == http.StatusNotFound {
		return fmt.Errorf("%w: ID [ %s ]", ErrNotFound, id)
	}
	return err
}
