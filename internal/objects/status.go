package objects

// StatusCode tags every message recorded on a validation response.
type StatusCode int

const (
	SuccessDefault     StatusCode = 200
	SuccessCommitter   StatusCode = 201
	SuccessContributor StatusCode = 202
	SuccessSkipped     StatusCode = 203

	ErrorDefault     StatusCode = -401
	ErrorSignOff     StatusCode = -402
	ErrorSpecProject StatusCode = -403
	ErrorAuthor      StatusCode = -404
	ErrorCommitter   StatusCode = -405
)

func (c StatusCode) IsError() bool {
	return c < 0
}

func (c StatusCode) String() string {
	switch c {
	case SuccessDefault:
		return "SUCCESS_DEFAULT"
	case SuccessCommitter:
		return "SUCCESS_COMMITTER"
	case SuccessContributor:
		return "SUCCESS_CONTRIBUTOR"
	case SuccessSkipped:
		return "SUCCESS_SKIPPED"
	case ErrorDefault:
		return "ERROR_DEFAULT"
	case ErrorSignOff:
		return "ERROR_SIGN_OFF"
	case ErrorSpecProject:
		return "ERROR_SPEC_PROJECT"
	case ErrorAuthor:
		return "ERROR_AUTHOR"
	case ErrorCommitter:
		return "ERROR_COMMITTER"
	default:
		return "UNKNOWN"
	}
}
