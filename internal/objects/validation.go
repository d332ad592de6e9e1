package objects

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/tidwall/gjson"
)

// RequestKey groups messages that belong to the request rather than to a commit.
const RequestKey = "request"

type ValidationRequest struct {
	RepoURL    string       `json:"repoUrl"`
	Provider   ProviderType `json:"provider"`
	StrictMode bool         `json:"strictMode"`
	Commits    []Commit     `json:"commits"`
}

type Message struct {
	Message string     `json:"message"`
	Code    StatusCode `json:"code"`
}

type CommitStatus struct {
	Messages []Message `json:"messages"`
	Warnings []Message `json:"warnings"`
	Errors   []Message `json:"errors"`
}

// CommitStatuses is a map of statuses keyed by commit hash that remembers insertion order.
type CommitStatuses struct {
	order  []string
	byHash map[string]*CommitStatus
}

// Get returns the status for hash, creating it at the end when missing.
func (s *CommitStatuses) Get(hash string) *CommitStatus {
	if s.byHash == nil {
		s.byHash = make(map[string]*CommitStatus)
	}

	status, ok := s.byHash[hash]
	if !ok {
		status = &CommitStatus{
			Messages: []Message{},
			Warnings: []Message{},
			Errors:   []Message{},
		}
		s.byHash[hash] = status
		s.order = append(s.order, hash)
	}

	return status
}

// Lookup returns the status for hash without creating it.
func (s *CommitStatuses) Lookup(hash string) (*CommitStatus, bool) {
	status, ok := s.byHash[hash]
	return status, ok
}

// Keys returns the hashes in insertion order.
func (s *CommitStatuses) Keys() []string {
	return append([]string(nil), s.order...)
}

func (s *CommitStatuses) Len() int {
	return len(s.order)
}

func (s CommitStatuses) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteByte('{')

	for i, hash := range s.order {
		if i > 0 {
			buf.WriteByte(',')
		}

		key, err := json.Marshal(hash)
		if err != nil {
			return nil, err
		}

		value, err := json.Marshal(s.byHash[hash])
		if err != nil {
			return nil, err
		}

		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(value)
	}

	buf.WriteByte('}')

	return buf.Bytes(), nil
}

func (s *CommitStatuses) UnmarshalJSON(data []byte) error {
	if !gjson.ValidBytes(data) {
		return fmt.Errorf("invalid commit statuses")
	}

	doc := gjson.ParseBytes(data)
	if doc.Type == gjson.Null {
		return nil
	}

	if !doc.IsObject() {
		return fmt.Errorf("commit statuses must be an object")
	}

	var err error

	doc.ForEach(func(key, value gjson.Result) bool {
		status := s.Get(key.String())
		err = json.Unmarshal([]byte(value.Raw), status)

		return err == nil
	})

	return err
}

type ValidationResponse struct {
	Time           time.Time      `json:"time"`
	Commits        CommitStatuses `json:"commits"`
	TrackedProject bool           `json:"trackedProject"`
	StrictMode     bool           `json:"strictMode"`
	Passed         bool           `json:"passed"`
	ErrorCount     int            `json:"errorCount"`
}

func NewValidationResponse(strict bool) *ValidationResponse {
	return &ValidationResponse{
		Time:       time.Now().UTC(),
		StrictMode: strict,
	}
}

func statusKey(hash string) string {
	if strings.TrimSpace(hash) == "" {
		return RequestKey
	}

	return hash
}

func (r *ValidationResponse) AddMessage(hash, message string, code StatusCode) {
	status := r.Commits.Get(statusKey(hash))
	status.Messages = append(status.Messages, Message{Message: message, Code: code})
}

func (r *ValidationResponse) AddWarning(hash, message string, code StatusCode) {
	status := r.Commits.Get(statusKey(hash))
	status.Warnings = append(status.Warnings, Message{Message: message, Code: code})
}

func (r *ValidationResponse) AddError(hash, message string, code StatusCode) {
	status := r.Commits.Get(statusKey(hash))
	status.Errors = append(status.Errors, Message{Message: message, Code: code})
	r.ErrorCount++
}

// WarningCount sums warnings over every commit.
func (r *ValidationResponse) WarningCount() int {
	count := 0

	for _, hash := range r.Commits.order {
		count += len(r.Commits.byHash[hash].Warnings)
	}

	return count
}
