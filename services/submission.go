package services

import (
	"context"
	"mime/multipart"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/hadealahmad/anonymous-messages/utils"
)

// Body length bounds, in runes, applied after sanitization.
const (
	minBodyRunes = 10
	maxBodyRunes = 2000
)

// SubmitInput carries one visitor submission through the pipeline.
type SubmitInput struct {
	Body           string
	FormToken      string
	RecaptchaToken string
	RemoteIP       string
	// ClientKey identifies the submitter for interval limiting, normally
	// the client IP.
	ClientKey string
	// Authenticated submitters can be exempt from the interval limit.
	Authenticated  bool
	AssignedUserID *uint
	// SkipNotify suppresses the reviewer email for this submission.
	SkipNotify bool
	Images     []*multipart.FileHeader
}

// SubmitResult reports what a successful submission produced.
type SubmitResult struct {
	MessageID    uint
	SenderName   string
	UploadErrors []string
}

// SubmissionService runs the full intake pipeline: form token, interval
// limit, length bounds, reCAPTCHA, spam heuristics, then persistence,
// uploads and notification. Checks run cheapest-first so obvious junk never
// reaches the external verifier.
type SubmissionService struct {
	store    *MessageStore
	users    *UserStore
	uploads  *UploadStore
	limiter  *IntervalLimiter
	spam     SpamChecker
	verifier *RecaptchaVerifier
	notifier *Notifier

	limitEnabled    bool
	limitExemptAuth bool
	spamEnabled     bool
	uploadsEnabled  bool
}

// SubmissionOptions toggles pipeline stages from configuration.
type SubmissionOptions struct {
	LimitEnabled    bool
	LimitExemptAuth bool
	SpamEnabled     bool
	UploadsEnabled  bool
}

func NewSubmissionService(
	store *MessageStore,
	users *UserStore,
	uploads *UploadStore,
	limiter *IntervalLimiter,
	spam SpamChecker,
	verifier *RecaptchaVerifier,
	notifier *Notifier,
	opts SubmissionOptions,
) *SubmissionService {
	return &SubmissionService{
		store:           store,
		users:           users,
		uploads:         uploads,
		limiter:         limiter,
		spam:            spam,
		verifier:        verifier,
		notifier:        notifier,
		limitEnabled:    opts.LimitEnabled,
		limitExemptAuth: opts.LimitExemptAuth,
		spamEnabled:     opts.SpamEnabled,
		uploadsEnabled:  opts.UploadsEnabled,
	}
}

// Submit runs the pipeline for one submission. On success the interval
// limiter is recorded and the notifier fired; on rejection nothing persists.
func (s *SubmissionService) Submit(ctx context.Context, in SubmitInput) (*SubmitResult, error) {
	// Token failures stay generic so a forger learns nothing about why.
	if err := utils.VerifyFormToken(in.FormToken); err != nil {
		return nil, ErrUnauthorized
	}

	limited := s.limitEnabled && !(s.limitExemptAuth && in.Authenticated)
	if limited && !s.limiter.Allow(ctx, in.ClientKey) {
		return nil, ErrRateLimited
	}

	body := strings.TrimSpace(utils.SanitizeText(in.Body))
	if n := utf8.RuneCountInString(body); n < minBodyRunes || n > maxBodyRunes {
		return nil, NewValidationError("message must be between 10 and 2000 characters")
	}

	if err := s.verifier.Verify(ctx, in.RecaptchaToken, in.RemoteIP); err != nil {
		return nil, err
	}

	if s.spamEnabled {
		if heuristic := s.spam.Check(body); heuristic != "" {
			return nil, &SpamRejection{Heuristic: heuristic}
		}
	}

	if in.AssignedUserID != nil {
		ok, err := s.users.Exists(*in.AssignedUserID)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, NewValidationError("assigned user does not exist")
		}
	}

	msg, err := s.store.Insert(body, nil, in.AssignedUserID)
	if err != nil {
		return nil, err
	}

	result := &SubmitResult{MessageID: msg.ID, SenderName: msg.SenderName}

	// Upload failures do not reject an already accepted message; the
	// visitor gets per-file errors alongside the success.
	if s.uploadsEnabled && len(in.Images) > 0 {
		result.UploadErrors = s.uploads.ProcessAll(msg.ID, in.Images)
		if len(result.UploadErrors) > 0 {
			zap.L().Warn("submission uploads partially failed",
				zap.Uint("message_id", msg.ID),
				zap.Strings("errors", result.UploadErrors))
		}
	}

	if limited {
		s.limiter.Record(ctx, in.ClientKey)
	}
	if s.notifier != nil && !in.SkipNotify {
		s.notifier.NotifyNewMessage(msg)
	}
	return result, nil
}
