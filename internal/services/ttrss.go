package services

import (
	"cmp"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
	"unicode"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/ytsubs/internal/shared"
)

// APIPath is the TT-RSS JSON endpoint relative to the installation URL.
const APIPath = "/api/"

const logoutTimeout = 10 * time.Second

// Envelope wraps every TT-RSS API response.
type Envelope struct {
	Seq     int             `json:"seq"`
	Status  int             `json:"status"`
	Content json.RawMessage `json:"content"`
}

// Content is one of [LoginContent], [ImportResult] or [ErrorContent].
type Content interface {
	content()
}

// LoginContent is returned by a successful login.
type LoginContent struct {
	SessionID string `json:"session_id"`
	APILevel  int    `json:"api_level"`
}

// ImportResult is returned by importOPML. Message holds the report lines,
// starting with a banner and ending with a separator.
type ImportResult struct {
	Message          []string `json:"message"`
	DuplicateMessage string   `json:"duplicate_message"`
	AddedMessage     string   `json:"added_message"`
}

// ErrorContent holds content of any other shape.
type ErrorContent struct {
	Raw json.RawMessage
}

func (LoginContent) content() {}
func (ImportResult) content() {}
func (ErrorContent) content() {}

// UnmarshalJSON accepts both the snake_case keys TT-RSS sends and camelCase aliases.
func (l *LoginContent) UnmarshalJSON(data []byte) error {
	var aux struct {
		SessionID      string `json:"session_id"`
		SessionIDCamel string `json:"sessionId"`
		APILevel       int    `json:"api_level"`
		APILevelCamel  int    `json:"apiLevel"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	l.SessionID = cmp.Or(aux.SessionID, aux.SessionIDCamel)
	l.APILevel = cmp.Or(aux.APILevel, aux.APILevelCamel)
	return nil
}

// UnmarshalJSON accepts both the snake_case keys TT-RSS sends and camelCase aliases.
func (r *ImportResult) UnmarshalJSON(data []byte) error {
	var aux struct {
		Message               []string `json:"message"`
		DuplicateMessage      string   `json:"duplicate_message"`
		DuplicateMessageCamel string   `json:"duplicateMessage"`
		AddedMessage          string   `json:"added_message"`
		AddedMessageCamel     string   `json:"addedMessage"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	r.Message = aux.Message
	r.DuplicateMessage = cmp.Or(aux.DuplicateMessage, aux.DuplicateMessageCamel)
	r.AddedMessage = cmp.Or(aux.AddedMessage, aux.AddedMessageCamel)
	return nil
}

func hasAny(fields map[string]json.RawMessage, keys ...string) bool {
	for _, key := range keys {
		if _, ok := fields[key]; ok {
			return true
		}
	}
	return false
}

// DecodeContent discriminates raw by its fields, in this order:
// "session_id" selects [LoginContent]; "message" together with both marker fields
// selects [ImportResult]; everything else, including non-objects, becomes
// [ErrorContent]. camelCase spellings of the keys are accepted.
func DecodeContent(raw json.RawMessage) Content {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil || fields == nil {
		return ErrorContent{Raw: raw}
	}

	if hasAny(fields, "session_id", "sessionId") {
		var login LoginContent
		if err := json.Unmarshal(raw, &login); err == nil && login.SessionID != "" {
			return login
		}
	}

	if hasAny(fields, "message") &&
		hasAny(fields, "duplicate_message", "duplicateMessage") &&
		hasAny(fields, "added_message", "addedMessage") {
		var result ImportResult
		if err := json.Unmarshal(raw, &result); err == nil {
			return result
		}
	}

	return ErrorContent{Raw: raw}
}

// Total is the number of event lines in the report, excluding the banner and the
// trailing separator.
func (r ImportResult) Total() int {
	return max(len(r.Message)-2, 0)
}

// Added returns the report lines announcing a new feed.
func (r ImportResult) Added() []string {
	return FilterEvents(r.Message, r.AddedMessage)
}

// Duplicated returns the report lines announcing a feed that already existed.
func (r ImportResult) Duplicated() []string {
	return FilterEvents(r.Message, r.DuplicateMessage)
}

// Summary classifies the report.
func (r ImportResult) Summary() *ImportSummary {
	return &ImportSummary{
		Report:     r.Message,
		Total:      r.Total(),
		Added:      r.Added(),
		Duplicated: r.Duplicated(),
	}
}

// ImportSummary is the classified outcome of an import.
type ImportSummary struct {
	Report     []string
	Total      int
	Added      []string
	Duplicated []string
}

// FilterEvents returns the trimmed lines that begin with marker once leading
// whitespace is ignored. An empty marker matches nothing.
func FilterEvents(lines []string, marker string) []string {
	matched := []string{}
	if marker == "" {
		return matched
	}
	for _, line := range lines {
		if strings.HasPrefix(strings.TrimLeftFunc(line, unicode.IsSpace), marker) {
			matched = append(matched, strings.TrimSpace(line))
		}
	}
	return matched
}

// Session is an authenticated TT-RSS session.
type Session struct {
	ID       string
	APILevel int
}

type loginRequest struct {
	Op       string `json:"op"`
	User     string `json:"user"`
	Password string `json:"password"`
	Seq      int    `json:"seq"`
}

type importRequest struct {
	Op   string `json:"op"`
	SID  string `json:"sid"`
	OPML string `json:"opml"`
	Seq  int    `json:"seq"`
}

type logoutRequest struct {
	Op  string `json:"op"`
	SID string `json:"sid"`
	Seq int    `json:"seq"`
}

// TTRSSService talks to the JSON API of a Tiny Tiny RSS installation.
// A service is not safe for concurrent use.
type TTRSSService struct {
	api           *APIService
	username      string
	password      string
	importTimeout time.Duration
	logger        *log.Logger
	seq           int
}

// NewTTRSSService creates a client for the installation described by config.
func NewTTRSSService(config shared.TTRSSConfig, client *http.Client, logger *log.Logger) *TTRSSService {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}

	return &TTRSSService{
		api:           NewAPIService(config.URL, client),
		username:      config.Username,
		password:      config.Password,
		importTimeout: config.ImportTimeout(),
		logger:        logger,
	}
}

// Name returns the service name.
func (s *TTRSSService) Name() string {
	return "Tiny Tiny RSS"
}

// Endpoint returns the absolute API URL.
func (s *TTRSSService) Endpoint() string {
	return s.api.URL(APIPath)
}

func (s *TTRSSService) nextSeq() int {
	s.seq++
	return s.seq
}

// call posts payload and decodes the envelope. kind classifies transport and shape failures.
func (s *TTRSSService) call(ctx context.Context, kind error, seq int, payload any) (*Envelope, error) {
	resp, err := s.api.PostJSON(ctx, APIPath, payload)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", kind, err)
	}

	var env Envelope
	if !resp.IsJSON || resp.Decode(&env) != nil {
		return nil, &HTTPError{Kind: kind, StatusCode: resp.StatusCode, Body: resp.Body}
	}
	if env.Seq != seq {
		s.logger.Warn("response sequence mismatch", "sent", seq, "received", env.Seq)
	}
	return &env, nil
}

// Login opens a session with the configured credentials.
func (s *TTRSSService) Login(ctx context.Context) (*Session, error) {
	seq := s.nextSeq()
	env, err := s.call(ctx, shared.ErrLoginFailed, seq, loginRequest{
		Op:       "login",
		User:     s.username,
		Password: s.password,
		Seq:      seq,
	})
	if err != nil {
		return nil, err
	}

	login, ok := DecodeContent(env.Content).(LoginContent)
	if env.Status != 0 || !ok {
		return nil, &ResponseError{Kind: shared.ErrLoginFailed, Status: env.Status, Content: env.Content}
	}

	s.logger.Debug("logged in", "api_level", login.APILevel)
	return &Session{ID: login.SessionID, APILevel: login.APILevel}, nil
}

// ImportOPML uploads document under session. The request is bounded by the
// configured import timeout.
func (s *TTRSSService) ImportOPML(ctx context.Context, session *Session, document []byte) (*ImportResult, error) {
	ctx, cancel := context.WithTimeout(ctx, s.importTimeout)
	defer cancel()

	seq := s.nextSeq()
	env, err := s.call(ctx, shared.ErrImportFailed, seq, importRequest{
		Op:   "importOPML",
		SID:  session.ID,
		OPML: base64.StdEncoding.EncodeToString(document),
		Seq:  seq,
	})
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w: %w: no response within %s", shared.ErrImportFailed, shared.ErrTimeout, s.importTimeout)
		}
		return nil, err
	}

	result, ok := DecodeContent(env.Content).(ImportResult)
	if env.Status != 0 || !ok {
		return nil, &ResponseError{Kind: shared.ErrImportFailed, Status: env.Status, Content: env.Content}
	}
	return &result, nil
}

// Logout closes session.
func (s *TTRSSService) Logout(ctx context.Context, session *Session) error {
	seq := s.nextSeq()
	env, err := s.call(ctx, shared.ErrLoginFailed, seq, logoutRequest{Op: "logout", SID: session.ID, Seq: seq})
	if err != nil {
		return err
	}
	if env.Status != 0 {
		return &ResponseError{Kind: shared.ErrLoginFailed, Status: env.Status, Content: env.Content}
	}
	return nil
}

// Upload logs in, imports document and classifies the report. The session is
// closed afterwards; a failed logout is only logged.
func (s *TTRSSService) Upload(ctx context.Context, document []byte) (*ImportSummary, error) {
	session, err := s.Login(ctx)
	if err != nil {
		return nil, err
	}
	defer func() {
		logoutCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), logoutTimeout)
		defer cancel()
		if err := s.Logout(logoutCtx, session); err != nil {
			s.logger.Warn("logout failed", "error", err)
		}
	}()

	result, err := s.ImportOPML(ctx, session, document)
	if err != nil {
		return nil, err
	}
	return result.Summary(), nil
}

var _ Importer = (*TTRSSService)(nil)
