package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"
	"go.uber.org/fx"

	"github.com/looplj/ecagate/internal/log"
	"github.com/looplj/ecagate/internal/objects"
	"github.com/looplj/ecagate/internal/server/biz"
)

// Validator is the decision engine behind POST /eca.
type Validator interface {
	Validate(ctx context.Context, req objects.ValidationRequest) *objects.ValidationResponse
}

type ValidationHandlersParams struct {
	fx.In

	ValidationService *biz.ValidationService
}

type ValidationHandlers struct {
	Validator Validator
}

func NewValidationHandlers(params ValidationHandlersParams) *ValidationHandlers {
	return &ValidationHandlers{
		Validator: params.ValidationService,
	}
}

// Validate answers 200 when every commit passed and 403 otherwise.
// Bodies that can not be decoded are rejected with 400.
func (h *ValidationHandlers) Validate(c *gin.Context) {
	ctx := c.Request.Context()

	var req objects.ValidationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		JSONError(c, http.StatusBadRequest, fmt.Errorf("invalid request body: %w", err))
		return
	}

	if req.RepoURL != "" {
		if _, err := url.Parse(req.RepoURL); err != nil {
			JSONError(c, http.StatusBadRequest, fmt.Errorf("invalid repoUrl: %w", err))
			return
		}
	}

	resp := h.Validator.Validate(ctx, req)

	log.Info(ctx, "validation finished",
		log.String("repo_url", req.RepoURL),
		log.String("provider", string(req.Provider)),
		log.Int("commits", len(req.Commits)),
		log.Bool("passed", resp.Passed),
		log.Bool("tracked", resp.TrackedProject),
		log.Int("errors", resp.ErrorCount))

	status := http.StatusOK
	if !resp.Passed {
		status = http.StatusForbidden
	}

	c.JSON(status, resp)
}
