package biz

import (
	"context"
	"fmt"

	"github.com/looplj/ecagate/internal/log"
	"github.com/looplj/ecagate/internal/objects"
)

// Role is the part an identity plays in a commit.
type Role string

const (
	RoleAuthor    Role = "author"
	RoleCommitter Role = "committer"
)

func (r Role) ErrorCode() objects.StatusCode {
	if r == RoleCommitter {
		return objects.ErrorCommitter
	}

	return objects.ErrorAuthor
}

func (r Role) missingAccountMessage() string {
	if r == RoleCommitter {
		return "Committing user must have an Eclipse Account"
	}

	return "Author must have an Eclipse Account"
}

// IsCommitter reports whether user has committer rights on the matched projects.
// The first project listing the user decides. A committer of a specification
// project without specification rights is rejected with an error. Outside any
// listing, bots are treated as committers.
func (s *ValidationService) IsCommitter(
	ctx context.Context,
	resp *objects.ValidationResponse,
	user *objects.EclipseUser,
	hash string,
	matched []objects.Project,
) bool {
	for _, project := range matched {
		if !project.HasCommitter(user.Name) {
			continue
		}

		if project.IsSpecProject() && !user.ECA.CanContributeSpecProject {
			s.addError(ctx, resp, hash,
				fmt.Sprintf("Project is a specification for the working group '%s', but user does not have permission to modify a specification project",
					project.SpecProjectWorkingGroup),
				objects.ErrorSpecProject)

			return false
		}

		log.Debug(ctx, "user is a committer on project",
			log.String("mail", user.Mail),
			log.String("project", project.Name))

		return true
	}

	if user.IsBot || s.bots.IsBot(ctx, user.Mail, matched) {
		log.Debug(ctx, "user is a bot", log.String("name", user.Name), log.String("mail", user.Mail))
		return true
	}

	return false
}

// EnforceAgreement records the committer status of user and, for non-committers,
// requires a signed contributor agreement.
func (s *ValidationService) EnforceAgreement(
	ctx context.Context,
	resp *objects.ValidationResponse,
	hash string,
	user *objects.EclipseUser,
	isCommitter bool,
	role Role,
) {
	if isCommitter {
		s.addMessage(ctx, resp, hash, fmt.Sprintf("Eclipse user '%s'(%s) is a committer on the project.", user.Name, role))
		return
	}

	s.addMessage(ctx, resp, hash, fmt.Sprintf("Eclipse user '%s'(%s) is not a committer on the project.", user.Name, role))

	if user.ECA.Signed {
		s.addMessage(ctx, resp, hash, fmt.Sprintf("Eclipse user '%s'(%s) has a current Eclipse Contributor Agreement (ECA) on file.", user.Name, role))
		return
	}

	s.addMessage(ctx, resp, hash, fmt.Sprintf("Eclipse user '%s'(%s) does not have a current Eclipse Contributor Agreement (ECA) on file.\n"+
		"If there are multiple commits, please ensure that each author has a ECA.", user.Name, role))
	s.addError(ctx, resp, hash,
		fmt.Sprintf("An Eclipse Contributor Agreement is required for Eclipse user '%s'(%s).", user.Name, role),
		role.ErrorCode())
}
