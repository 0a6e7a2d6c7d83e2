// Package main (credentials.go) :
// These methods are for authorizing the requests to Drive API.
// An API key or a service account is used when it is given. Otherwise, OAuth2
// credentials of an installed application are used, and the retrieved token is
// cached in a file.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"sync"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	drive "google.golang.org/api/drive/v3"
	"google.golang.org/api/option"
)

// credentialProvider : Provide the client options for Drive API.
type credentialProvider interface {
	ClientOptions(ctx context.Context) ([]option.ClientOption, error)
}

// apiKeyCredential : Use an API key. Only publicly shared files can be retrieved.
type apiKeyCredential struct {
	Key string
}

func (a apiKeyCredential) ClientOptions(ctx context.Context) ([]option.ClientOption, error) {
	return []option.ClientOption{option.WithAPIKey(a.Key)}, nil
}

// serviceAccountCredential : Use the key file of a service account. Files
// shared with the service account can be retrieved.
type serviceAccountCredential struct {
	KeyFile string
}

func (s serviceAccountCredential) ClientOptions(ctx context.Context) ([]option.ClientOption, error) {
	b, err := os.ReadFile(s.KeyFile)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: '%s' was not found", ErrNoCredentials, s.KeyFile)
		}
		return nil, err
	}
	creds, err := google.CredentialsFromJSON(ctx, b, drive.DriveReadonlyScope)
	if err != nil {
		return nil, fmt.Errorf("%w: '%s' is not a service account key: %v", ErrNoCredentials, s.KeyFile, err)
	}
	return []option.ClientOption{option.WithCredentials(creds)}, nil
}

// oauthCredential : Use OAuth2 credentials with the token cache file.
type oauthCredential struct {
	CredentialsFile string
	TokenFile       string
	In              io.Reader
	Out             io.Writer
}

// newCredentialProvider : Select the credential provider by the given values.
func newCredentialProvider(apiKey, serviceAccount, credentialsFile, tokenFile string) (credentialProvider, error) {
	if apiKey != "" {
		return apiKeyCredential{Key: apiKey}, nil
	}
	if serviceAccount != "" {
		return serviceAccountCredential{KeyFile: serviceAccount}, nil
	}
	if chkFile(credentialsFile) {
		return &oauthCredential{
			CredentialsFile: credentialsFile,
			TokenFile:       tokenFile,
			In:              os.Stdin,
			Out:             os.Stdout,
		}, nil
	}
	return nil, fmt.Errorf("%w: please use an API key, a service account or put '%s'", ErrNoCredentials, credentialsFile)
}

func (o *oauthCredential) ClientOptions(ctx context.Context) ([]option.ClientOption, error) {
	b, err := os.ReadFile(o.CredentialsFile)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: '%s' was not found", ErrNoCredentials, o.CredentialsFile)
		}
		return nil, err
	}
	config, err := google.ConfigFromJSON(b, drive.DriveReadonlyScope)
	if err != nil {
		return nil, err
	}
	tok, err := loadToken(o.TokenFile)
	if err != nil {
		if tok, err = o.tokenFromWeb(ctx, config); err != nil {
			return nil, err
		}
		if err := saveToken(o.TokenFile, tok); err != nil {
			return nil, err
		}
	}
	ts := &cachedTokenSource{
		base: config.TokenSource(ctx, tok),
		path: o.TokenFile,
		last: tok.AccessToken,
	}
	return []option.ClientOption{option.WithTokenSource(ts)}, nil
}

// tokenFromWeb : Retrieve a token by the authorization code which is inputted by the user.
func (o *oauthCredential) tokenFromWeb(ctx context.Context, config *oauth2.Config) (*oauth2.Token, error) {
	authURL := config.AuthCodeURL("state-token", oauth2.AccessTypeOffline)
	fmt.Fprintf(o.Out, "Open the following URL in a browser, authorize and input the code.\n%s\nCode: ", authURL)
	var code string
	if _, err := fmt.Fscan(o.In, &code); err != nil {
		return nil, fmt.Errorf("%w: authorization code could not be read: %v", ErrNoCredentials, err)
	}
	tok, err := config.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNoCredentials, err)
	}
	return tok, nil
}

// loadToken : Load the cached token.
func loadToken(path string) (*oauth2.Token, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	tok := &oauth2.Token{}
	if err := json.NewDecoder(f).Decode(tok); err != nil {
		return nil, err
	}
	return tok, nil
}

// saveToken : Cache the token.
func saveToken(path string, tok *oauth2.Token) error {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return err
	}
	if err := json.NewEncoder(f).Encode(tok); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// cachedTokenSource : Save the token again when it was refreshed.
type cachedTokenSource struct {
	mu   sync.Mutex
	base oauth2.TokenSource
	path string
	last string
}

func (c *cachedTokenSource) Token() (*oauth2.Token, error) {
	tok, err := c.base.Token()
	if err != nil {
		return nil, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if tok.AccessToken != c.last {
		if err := saveToken(c.path, tok); err != nil {
			warnf("!! Token could not be cached to '%s': %v\n", c.path, err)
		}
		c.last = tok.AccessToken
	}
	return tok, nil
}
