package upstream

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/looplj/ecagate/internal/log"
	"github.com/looplj/ecagate/internal/objects"
	"github.com/looplj/ecagate/internal/pkg/httpclient"
)

const (
	defaultPageSize = 100
	defaultMaxPages = 50
)

type ProjectsClient struct {
	baseURL  string
	pageSize int
	maxPages int
	client   *httpclient.HttpClient
}

func NewProjectsClient(cfg ProjectsConfig) *ProjectsClient {
	pageSize := cfg.PageSize
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}

	maxPages := cfg.MaxPages
	if maxPages <= 0 {
		maxPages = defaultMaxPages
	}

	return &ProjectsClient{
		baseURL:  strings.TrimRight(cfg.BaseURL, "/"),
		pageSize: pageSize,
		maxPages: maxPages,
		client:   httpclient.NewHttpClient(defaultTimeout(cfg.Timeout)),
	}
}

// ListProjects walks every page of the catalog. Paging stops on a short page.
func (c *ProjectsClient) ListProjects(ctx context.Context) ([]objects.Project, error) {
	var projects []objects.Project

	for page := 1; page <= c.maxPages; page++ {
		var batch []objects.Project

		err := c.client.DoJSON(ctx, &httpclient.Request{
			Method: http.MethodGet,
			URL:    c.baseURL + "/projects",
			Query: url.Values{
				"page":     {strconv.Itoa(page)},
				"pagesize": {strconv.Itoa(c.pageSize)},
			},
		}, &batch)
		if err != nil {
			return nil, fmt.Errorf("list projects page %d: %w", page, err)
		}

		projects = append(projects, batch...)

		if len(batch) < c.pageSize {
			return projects, nil
		}
	}

	log.Warn(ctx, "project catalog truncated at page limit",
		log.Int("max_pages", c.maxPages),
		log.Int("projects", len(projects)))

	return projects, nil
}
