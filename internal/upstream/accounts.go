package upstream

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"

	"github.com/looplj/ecagate/internal/objects"
	"github.com/looplj/ecagate/internal/pkg/httpclient"
)

// AccountsClient queries the account directory.
type AccountsClient struct {
	baseURL string
	client  *httpclient.HttpClient
}

// NewAccountsClient builds the directory client. With OAuth configured every
// request carries a bearer token obtained through the client credentials grant.
func NewAccountsClient(cfg AccountsConfig) *AccountsClient {
	base := httpclient.NewHttpClient(defaultTimeout(cfg.Timeout))

	if !cfg.OAuth.Enabled() {
		return &AccountsClient{
			baseURL: strings.TrimRight(cfg.BaseURL, "/"),
			client:  base,
		}
	}

	cc := clientcredentials.Config{
		ClientID:     cfg.OAuth.ClientID,
		ClientSecret: cfg.OAuth.ClientSecret,
		TokenURL:     cfg.OAuth.TokenURL,
		Scopes:       cfg.OAuth.Scopes,
	}

	// The token source uses the same timeout bound as API calls.
	tokenCtx := context.WithValue(context.Background(), oauth2.HTTPClient, &http.Client{Timeout: defaultTimeout(cfg.Timeout)})
	oauthClient := cc.Client(tokenCtx)
	oauthClient.Timeout = defaultTimeout(cfg.Timeout)

	return &AccountsClient{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		client:  httpclient.NewHttpClientWithClient(oauthClient),
	}
}

// LookupByMail returns every account registered with mail. A 404 is reported as
// an error satisfying httpclient.IsNotFoundErr.
func (c *AccountsClient) LookupByMail(ctx context.Context, mail string) ([]objects.EclipseUser, error) {
	var users []objects.EclipseUser

	err := c.client.DoJSON(ctx, &httpclient.Request{
		Method: http.MethodGet,
		URL:    c.baseURL + "/account/profile",
		Query:  url.Values{"mail": {mail}},
	}, &users)
	if err != nil {
		return nil, fmt.Errorf("lookup account by mail: %w", err)
	}

	return users, nil
}

// LookupByGithubHandle returns the account linked to a GitHub handle.
func (c *AccountsClient) LookupByGithubHandle(ctx context.Context, handle string) (*objects.EclipseUser, error) {
	var user objects.EclipseUser

	err := c.client.DoJSON(ctx, &httpclient.Request{
		Method: http.MethodGet,
		URL:    c.baseURL + "/github/profile/" + url.PathEscape(handle),
	}, &user)
	if err != nil {
		return nil, fmt.Errorf("lookup account by github handle: %w", err)
	}

	return &user, nil
}
