// Package bsky publishes report text to a Bluesky account over atproto.
package bsky

import (
	"context"
	"fmt"
	"net/http"
	"time"

	comatproto "github.com/bluesky-social/indigo/api/atproto"
	appbsky "github.com/bluesky-social/indigo/api/bsky"
	lexutil "github.com/bluesky-social/indigo/lex/util"
	"github.com/bluesky-social/indigo/xrpc"
)

// DefaultPDSHost is the entryway used when no PDS host is configured.
const DefaultPDSHost = "https://bsky.social"

const postCollection = "app.bsky.feed.post"

// Poster publishes a single text post. The pipeline treats any returned
// error as non-fatal.
type Poster interface {
	Post(ctx context.Context, text string) error
}

// Client posts to a Bluesky account using handle + app-password
// authentication against an atproto PDS.
type Client struct {
	host       string
	handle     string
	password   string
	httpClient *http.Client
}

// NewClient creates a posting client. Credentials are checked at post time,
// not here, so a credential-less run still archives and reports.
func NewClient(host, handle, password string) *Client {
	if host == "" {
		host = DefaultPDSHost
	}
	return &Client{
		host:       host,
		handle:     handle,
		password:   password,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// Post creates a session on the PDS and publishes text as a feed post.
// Missing credentials fail with a ConfigurationError before any network
// call; everything after that surfaces as a PublishError.
func (c *Client) Post(ctx context.Context, text string) error {
	if c.handle == "" || c.password == "" {
		return &ConfigurationError{Missing: missingCredentials(c.handle, c.password)}
	}

	client := &xrpc.Client{
		Host:   c.host,
		Client: c.httpClient,
	}

	session, err := comatproto.ServerCreateSession(ctx, client, &comatproto.ServerCreateSession_Input{
		Identifier: c.handle,
		Password:   c.password,
	})
	if err != nil {
		return &PublishError{Err: fmt.Errorf("creating session for %s: %w", c.handle, err)}
	}

	client.Auth = &xrpc.AuthInfo{
		AccessJwt:  session.AccessJwt,
		RefreshJwt: session.RefreshJwt,
		Handle:     session.Handle,
		Did:        session.Did,
	}

	post := &appbsky.FeedPost{
		LexiconTypeID: postCollection,
		Text:          text,
		CreatedAt:     time.Now().UTC().Format(time.RFC3339),
	}

	_, err = comatproto.RepoCreateRecord(ctx, client, &comatproto.RepoCreateRecord_Input{
		Collection: postCollection,
		Repo:       session.Did,
		Record:     &lexutil.LexiconTypeDecoder{Val: post},
	})
	if err != nil {
		return &PublishError{Err: fmt.Errorf("creating post record: %w", err)}
	}
	return nil
}

func missingCredentials(handle, password string) string {
	switch {
	case handle == "" && password == "":
		return "BSKY_HANDLE and BSKY_APP_PASSWORD"
	case handle == "":
		return "BSKY_HANDLE"
	default:
		return "BSKY_APP_PASSWORD"
	}
}
