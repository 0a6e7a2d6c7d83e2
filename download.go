// Package main (download.go) :
// These methods are for saving a file from its direct link.
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/cheggaaa/pb"
)

// savedFile : Result of download.
type savedFile struct {
	Filename string
	MimeType string
	FileSize int64
}

// chkFile : Check the existence of file and directory in local PC.
func chkFile(name string) bool {
	_, err := os.Stat(name)
	return err == nil
}

// makeDir : Make the output directory when it does not exist.
func makeDir(dir string) error {
	if chkFile(dir) {
		return nil
	}
	return os.MkdirAll(dir, 0777)
}

// getFilename : Retrieve filename from header.
func getFilename(res *http.Response) string {
	cd := res.Header.Get("Content-Disposition")
	if cd == "" {
		return ""
	}
	_, params, err := mime.ParseMediaType(cd)
	if err != nil || params["filename"] == "" {
		return ""
	}
	return localName(filepath.Base(params["filename"]))
}

// localName : Filename which stays in the work directory. Path separators in a
// name on Google Drive are replaced.
func localName(name string) string {
	name = strings.TrimSpace(strings.NewReplacer("/", "_", "\\", "_").Replace(name))
	if name == "." || name == ".." {
		return ""
	}
	return name
}

// downloadFile : Save the file of the link to the work directory.
func (p *para) downloadFile(link DownloadLink) (*savedFile, error) {
	req, err := http.NewRequest(http.MethodGet, link.URL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", userAgent)
	res, err := p.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNetwork, err)
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: file ID [ %s ] returned status code %d", ErrNotAccessible, link.FileID, res.StatusCode)
	}
	if link.Fallback && isHTML(res.Header.Get("Content-Type")) {
		return nil, fmt.Errorf("%w: file ID [ %s ] still requires confirmation", ErrBypassExtractionFailed, link.FileID)
	}
	filename := p.Filename
	if filename == "" {
		filename = getFilename(res)
	}
	if filename == "" {
		filename = localName(link.DisplayName)
	}
	if filename == "" {
		filename = link.FileID
	}
	path := filepath.Join(p.WorkDir, filename)
	if chkFile(path) && !p.OverWrite {
		return nil, fmt.Errorf("'%s' is existing. If you want to overwrite, please use an option '--overwrite'", path)
	}
	file, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	var body io.Reader = res.Body
	if !p.Disp {
		total := res.ContentLength
		if total < 0 {
			total = 0
		}
		bar := pb.New64(total).SetUnits(pb.U_BYTES)
		bar.Output = os.Stderr
		bar.ShowSpeed = true
		bar.Start()
		defer bar.Finish()
		body = bar.NewProxyReader(res.Body)
	}
	size, err := io.Copy(file, body)
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("%w: %v", ErrNetwork, err)
	}
	if err := file.Close(); err != nil {
		return nil, err
	}
	return &savedFile{
		Filename: filename,
		MimeType: res.Header.Get("Content-Type"),
		FileSize: size,
	}, nil
}

func (s *savedFile) String() string {
	r, _ := json.Marshal(s)
	return string(r)
}
