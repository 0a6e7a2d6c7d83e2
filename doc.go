/*
Package main (doc.go) :
This is a CLI tool to retrieve direct links of shared files on Google Drive.

When the size of a shared file becomes large, Google Drive returns a virus scan warning page instead of the file, and the link cannot be opened by media players. gdlink accesses the file once, retrieves the confirm token and uuid from the warning page, and builds the link which can be fetched directly. This tool has the following features.

- Accept the URL of a shared file or folder, or the file ID.

- Retrieve the direct link of a file, and download it if required.

- Create an M3U playlist of the video files in a shared folder. An API key, a service account or OAuth2 credentials are required for folders. Video files which cannot be accessed are skipped.

---------------------------------------------------------------

# Usage

$ gdlink [URL of shared file on Google Drive]

$ gdlink -key [API key] [URL of shared folder on Google Drive]

$ gdlink -sa [key file of service account] [URL of shared folder on Google Drive]

The playlist is saved as "[folder name].m3u" to the directory given by "-d".

When URLs are given from stdin, each line is processed in order until "end".

---------------------------------------------------------------
*/
package main
