// Package main (gdlink.go) :
// These methods are for resolving shared files and folders on Google Drive to direct links.
package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"
	"golang.org/x/term"
)

const (
	appname = "gdlink"
	envval  = "GDLINK_APIKEY"
)

// para : Structure for each parameter
type para struct {
	APIKey      string
	Client      *http.Client
	Credentials string
	Disp        bool
	Download    bool
	Drive       driveService
	Filename    string
	Negotiator  linkNegotiator
	OverWrite   bool
	Recursive   bool
	ServiceAcct string
	ShowFileInf bool
	Strict      bool
	TokenFile   string
	WorkDir     string
}

// driveService : Create the Drive API service at the first use.
func (p *para) driveService() (driveService, error) {
	if p.Drive != nil {
		return p.Drive, nil
	}
	cred, err := newCredentialProvider(p.APIKey, p.ServiceAcct, p.Credentials, p.TokenFile)
	if err != nil {
		return nil, err
	}
	d, err := newDriveClient(context.Background(), cred)
	if err != nil {
		return nil, err
	}
	p.Drive = d
	return d, nil
}

// canQueryDrive : Drive API can be used without asking the user for authorization.
func (p *para) canQueryDrive() bool {
	return p.Drive != nil || p.APIKey != "" || p.ServiceAcct != "" || (chkFile(p.Credentials) && chkFile(p.TokenFile))
}

// process : Main method for one inputted URL or ID.
func (p *para) process(input string) error {
	t, err := ParseTarget(input)
	if err != nil {
		return err
	}
	if p.ShowFileInf {
		return p.showFileInf(t)
	}
	var name string
	if t.Bare && p.canQueryDrive() {
		srv, err := p.driveService()
		if err != nil {
			return err
		}
		meta, err := srv.FileMetadata(t.ID)
		if err != nil {
			return err
		}
		if meta.MimeType == folderMimeType {
			t.Kind = KindFolder
		}
		name = meta.Name
	}
	if t.Kind == KindFolder {
		return p.folder(t)
	}
	return p.file(t, name)
}

// file : Show the direct link of a file, and download it if required.
func (p *para) file(t Target, name string) error {
	link, err := DirectLink(p.Negotiator, Entry{ID: t.ID, Name: name}, p.Strict)
	if err != nil {
		return err
	}
	fmt.Println(link.URL)
	if !p.Download {
		return nil
	}
	if err := makeDir(p.WorkDir); err != nil {
		return err
	}
	saved, err := p.downloadFile(link)
	if err != nil {
		return err
	}
	fmt.Println(saved)
	return nil
}

// folder : Create the playlist of video files in a folder.
func (p *para) folder(t Target) error {
	srv, err := p.driveService()
	if err != nil {
		return fmt.Errorf("files in a folder cannot be retrieved: %w", err)
	}
	name, entries, err := srv.ListFolder(t.ID, p.Recursive)
	if err != nil {
		return err
	}
	if !p.Disp {
		fmt.Printf("There are %d files in the folder '%s'.\n", len(entries), name)
	}
	b := &PlaylistBuilder{Negotiator: p.Negotiator, Strict: p.Strict, Progress: !p.Disp}
	pl, err := b.Build(name, entries)
	if errors.Is(err, ErrNoVideoFiles) {
		fmt.Printf("No video files were found in the folder '%s'. The playlist was not created.\n", name)
		return nil
	}
	if err != nil {
		return err
	}
	if err := makeDir(p.WorkDir); err != nil {
		return err
	}
	path, err := pl.Save(p.WorkDir)
	if err != nil {
		return err
	}
	segs, err := ReadPlaylist(path)
	if err != nil {
		return err
	}
	if len(segs) != len(pl.Links) {
		return fmt.Errorf("'%s' has %d entries, but %d links were written", path, len(segs), len(pl.Links))
	}
	fmt.Println(playlistSummary(pl, path, len(entries)))
	if n := pl.Fallbacks(); n > 0 {
		warnf("!! %d link(s) in '%s' may still ask for confirmation.\n", n, path)
	}
	return nil
}

// showFileInf : Show file information.
func (p *para) showFileInf(t Target) error {
	srv, err := p.driveService()
	if err != nil {
		return fmt.Errorf("file information cannot be retrieved: %w", err)
	}
	meta, err := srv.FileMetadata(t.ID)
	if err != nil {
		return err
	}
	r, err := json.Marshal(meta)
	if err != nil {
		return err
	}
	fmt.Printf("%s\n", r)
	return nil
}

// readInputs : Read URLs from stdin until EOF or "end".
func readInputs(r io.Reader) ([]string, error) {
	var inputs []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "end" {
			break
		}
		if line != "" {
			inputs = append(inputs, line)
		}
	}
	return inputs, scanner.Err()
}

// handler : Initialize of "para".
func handler(c *cli.Context) error {
	var err error
	workdir := c.String("directory")
	if workdir == "" {
		workdir = "."
	}
	if workdir, err = filepath.Abs(workdir); err != nil {
		return err
	}
	neg, err := NewNegotiator()
	if err != nil {
		return err
	}
	p := &para{
		APIKey:      strings.TrimSpace(c.String("apikey")),
		Client:      neg.Client,
		Credentials: c.String("credentials"),
		Disp:        c.Bool("quiet"),
		Download:    c.Bool("download"),
		Filename:    c.String("filename"),
		Negotiator:  neg,
		OverWrite:   c.Bool("overwrite"),
		Recursive:   c.Bool("recursive"),
		ServiceAcct: c.String("serviceaccount"),
		ShowFileInf: c.Bool("fileinf"),
		Strict:      c.Bool("strict"),
		TokenFile:   c.String("token"),
		WorkDir:     workdir,
	}
	input := c.Args().First()
	if input == "" {
		input = c.String("url")
	}
	if input != "" {
		return p.process(input)
	}
	if term.IsTerminal(int(os.Stdin.Fd())) {
		return cli.ShowAppHelp(c)
	}
	inputs, err := readInputs(os.Stdin)
	if err != nil {
		return err
	}
	if len(inputs) == 0 {
		return fmt.Errorf("%w: no URL data. Please check help\n\n $ %s --help", ErrInvalidInput, appname)
	}
	for _, in := range inputs {
		if err := p.process(in); err != nil {
			warnf("## Skipped: Error: %v\n", err)
		}
		p.Filename = ""
	}
	return nil
}

// createHelp : Create help document.
func createHelp() *cli.App {
	a := cli.NewApp()
	a.Name = appname
	a.Authors = []*cli.Author{
		{Name: appname + " authors [ https://github.com/gdlink/" + appname + " ]"},
	}
	a.Usage = "Resolve shared files and folders on Google Drive to direct links."
	a.UsageText = appname + " [options] <URL or file ID>"
	a.Version = "1.0.0"
	a.Flags = []cli.Flag{
		&cli.StringFlag{
			Name:    "url",
			Aliases: []string{"u"},
			Usage:   "URL or ID of shared file or folder on Google Drive. The first argument can be used instead.",
		},
		&cli.StringFlag{
			Name:    "directory",
			Aliases: []string{"d"},
			Usage:   "Directory for saving playlists and downloaded files. When this is not used, the current working directory is used.",
		},
		&cli.StringFlag{
			Name:    "apikey",
			Aliases: []string{"key"},
			Usage:   "API key is used to retrieve file list from shared folder and file information.",
			EnvVars: []string{envval},
		},
		&cli.StringFlag{
			Name:    "serviceaccount",
			Aliases: []string{"sa"},
			Usage:   "Key file of a service account. Files shared with the service account can be retrieved.",
		},
		&cli.StringFlag{
			Name:    "credentials",
			Aliases: []string{"c"},
			Usage:   "Credentials file of OAuth2 client. This is used when API key is not given.",
			Value:   "credentials.json",
		},
		&cli.StringFlag{
			Name:    "token",
			Aliases: []string{"t"},
			Usage:   "File for caching the OAuth2 token.",
			Value:   "token.json",
		},
		&cli.BoolFlag{
			Name:    "recursive",
			Aliases: []string{"r"},
			Usage:   "Video files in sub folders are also included in the playlist.",
		},
		&cli.BoolFlag{
			Name:    "download",
			Aliases: []string{"dl"},
			Usage:   "Download the file after its direct link was retrieved. This is for only a file.",
		},
		&cli.StringFlag{
			Name:    "filename",
			Aliases: []string{"f"},
			Usage:   "Filename of downloaded file. When this was not used, the original filename on Google Drive is used.",
		},
		&cli.BoolFlag{
			Name:    "overwrite",
			Aliases: []string{"o"},
			Usage:   "When filename of downloading file is existing in directory at local PC, overwrite it.",
		},
		&cli.BoolFlag{
			Name:    "fileinf",
			Aliases: []string{"i"},
			Usage:   "Retrieve file information. API key or OAuth2 credentials are required.",
		},
		&cli.BoolFlag{
			Name:    "quiet",
			Aliases: []string{"q"},
			Usage:   "When this option is used, the progression is not shown.",
		},
		&cli.BoolFlag{
			Name:  "strict",
			Usage: "When the confirm token cannot be retrieved, stop with an error instead of using the plain link.",
		},
	}
	return a
}

// main : Main of this script
func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		warnf("!! .env could not be loaded: %v\n", err)
	}
	a := createHelp()
	a.Action = handler
	if err := a.Run(os.Args); err != nil {
		errorColor.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
