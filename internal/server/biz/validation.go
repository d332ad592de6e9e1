package biz

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/fx"

	"github.com/looplj/ecagate/internal/log"
	"github.com/looplj/ecagate/internal/metrics"
	"github.com/looplj/ecagate/internal/objects"
)

type ValidationServiceParams struct {
	fx.In

	Projects   *ProjectService
	Identities *IdentityService
	Bots       *BotService
}

// ValidationService decides whether the identities of a batch of commits may contribute.
type ValidationService struct {
	projects   *ProjectService
	identities *IdentityService
	bots       *BotService
}

func NewValidationService(params ValidationServiceParams) *ValidationService {
	return &ValidationService{
		projects:   params.Projects,
		identities: params.Identities,
		bots:       params.Bots,
	}
}

// Validate checks every commit of req in order and returns the accumulated verdict.
// Structural problems of the request are reported before any commit is looked at.
func (s *ValidationService) Validate(ctx context.Context, req objects.ValidationRequest) *objects.ValidationResponse {
	resp := objects.NewValidationResponse(req.StrictMode)

	if len(req.Commits) == 0 {
		s.addRequestError(ctx, resp, "A commit is required to validate")
	}

	if strings.TrimSpace(req.RepoURL) == "" {
		s.addRequestError(ctx, resp, "A base repo URL needs to be set in order to validate")
	}

	if req.Provider == "" {
		s.addRequestError(ctx, resp, "A provider needs to be set to validate a request")
	}

	if resp.ErrorCount == 0 {
		matched := s.projects.Match(ctx, req.RepoURL, req.Provider)
		resp.TrackedProject = len(matched) > 0

		log.Debug(ctx, "processing validation request",
			log.String("repo_url", req.RepoURL),
			log.String("provider", string(req.Provider)),
			log.Int("commits", len(req.Commits)),
			log.Int("matched_projects", len(matched)))

		for _, commit := range req.Commits {
			if !s.processCommit(ctx, resp, commit, matched) {
				break
			}
		}
	}

	resp.Passed = resp.ErrorCount == 0
	metrics.RecordValidation(ctx, resp.Passed, resp.TrackedProject, resp.StrictMode)

	return resp
}

// processCommit validates a single commit. It returns false when the whole request must stop.
func (s *ValidationService) processCommit(ctx context.Context, resp *objects.ValidationResponse, commit objects.Commit, matched []objects.Project) bool {
	if !commit.IsValid() {
		log.Error(ctx, "invalid commit in request", log.String("hash", commit.Hash))
		resp.AddError(commit.Hash, "One or more commits were invalid. Please check the payload and try again", objects.ErrorDefault)
		metrics.RecordCommitIssue(ctx, int(objects.ErrorDefault), severityError)

		return false
	}

	hash := commit.Hash
	author := *commit.Author
	committer := *commit.Committer

	s.addMessage(ctx, resp, hash, fmt.Sprintf("Reviewing commit: %s", hash))
	s.addMessage(ctx, resp, hash, fmt.Sprintf("Authored by: %s <%s>", author.Name, author.Mail))

	if commit.IsMerge() {
		s.addMessage(ctx, resp, hash, fmt.Sprintf("Commit '%s' has multiple parents, merge commit detected, passing", hash))
		return true
	}

	eclipseAuthor, ok := s.resolve(ctx, resp, hash, author, matched, RoleAuthor)
	if !ok {
		return true
	}

	eclipseCommitter, ok := s.resolve(ctx, resp, hash, committer, matched, RoleCommitter)
	if !ok {
		return true
	}

	s.EnforceAgreement(ctx, resp, hash, eclipseAuthor, s.IsCommitter(ctx, resp, eclipseAuthor, hash, matched), RoleAuthor)

	// The committer is evaluated once and the result reused for the agreement check.
	committerIsCommitter := s.IsCommitter(ctx, resp, eclipseCommitter, hash, matched)
	s.EnforceAgreement(ctx, resp, hash, eclipseCommitter, committerIsCommitter, RoleCommitter)

	return true
}

// resolve finds the account acting as role. Allow-listed and bot mails get a
// synthesized account. An unresolved identity is recorded as an error and
// reported with ok false.
func (s *ValidationService) resolve(
	ctx context.Context,
	resp *objects.ValidationResponse,
	hash string,
	user objects.GitUser,
	matched []objects.Project,
	role Role,
) (*objects.EclipseUser, bool) {
	if s.bots.IsAllowed(user.Mail) || s.bots.IsBot(ctx, user.Mail, matched) {
		s.addMessage(ctx, resp, hash, fmt.Sprintf("Automated user '%s' detected for %s of commit %s", user.Mail, role, hash))
		return objects.NewBotStub(user), true
	}

	found := s.identities.Resolve(ctx, user)
	if found == nil {
		s.addMessage(ctx, resp, hash, fmt.Sprintf("Could not find an Eclipse user with mail '%s' for %s of commit %s", user.Mail, role, hash))
		s.addError(ctx, resp, hash, role.missingAccountMessage(), role.ErrorCode())

		return nil, false
	}

	return found, true
}

func (s *ValidationService) addMessage(ctx context.Context, resp *objects.ValidationResponse, hash, message string) {
	if log.DebugEnabled(ctx) {
		log.Debug(ctx, message, log.String("hash", hash))
	}

	resp.AddMessage(hash, message, objects.SuccessDefault)
}

const (
	severityError   = "error"
	severityWarning = "warning"
)

// addError records an identity problem. It only fails the request for tracked
// projects or in strict mode, otherwise it is downgraded to a warning.
func (s *ValidationService) addError(ctx context.Context, resp *objects.ValidationResponse, hash, message string, code objects.StatusCode) {
	log.Error(ctx, message, log.String("hash", hash), log.Int("code", int(code)))

	if resp.TrackedProject || resp.StrictMode {
		resp.AddError(hash, message, code)
		metrics.RecordCommitIssue(ctx, int(code), severityError)

		return
	}

	resp.AddWarning(hash, message, code)
	metrics.RecordCommitIssue(ctx, int(code), severityWarning)
}

// addRequestError records a structural problem. These always fail the request.
func (s *ValidationService) addRequestError(ctx context.Context, resp *objects.ValidationResponse, message string) {
	log.Error(ctx, message)
	resp.AddError(objects.RequestKey, message, objects.ErrorDefault)
	metrics.RecordCommitIssue(ctx, int(objects.ErrorDefault), severityError)
}
