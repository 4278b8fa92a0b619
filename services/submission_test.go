package services

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/hadealahmad/anonymous-messages/models"
	"github.com/hadealahmad/anonymous-messages/utils"
)

func newTestPipeline(t *testing.T, db *gorm.DB, opts SubmissionOptions) *SubmissionService {
	t.Helper()
	return NewSubmissionService(
		NewMessageStore(db),
		NewUserStore(db),
		nil,
		NewIntervalLimiter(time.Minute, nil),
		NewHeuristicSpamChecker(),
		NewRecaptchaVerifier("", 0.5), // unconfigured: verification passes
		nil,
		opts,
	)
}

func validFormToken(t *testing.T) string {
	t.Helper()
	token, err := utils.GenerateFormToken(time.Hour)
	require.NoError(t, err)
	return token
}

func TestSubmit(t *testing.T) {
	ctx := context.Background()
	opts := SubmissionOptions{LimitEnabled: true, SpamEnabled: true}

	t.Run("happy path creates a pending message", func(t *testing.T) {
		db := openTestDB(t)
		svc := newTestPipeline(t, db, opts)

		res, err := svc.Submit(ctx, SubmitInput{
			Body:      "How did you get started with photography?",
			FormToken: validFormToken(t),
			ClientKey: "1.2.3.4",
		})
		require.NoError(t, err)
		assert.NotZero(t, res.MessageID)
		assert.Regexp(t, pseudonymPattern, res.SenderName)

		var msg models.Message
		require.NoError(t, db.First(&msg, res.MessageID).Error)
		assert.Equal(t, models.StatusPending, msg.Status)
	})

	t.Run("second submission within the interval is rejected", func(t *testing.T) {
		db := openTestDB(t)
		svc := newTestPipeline(t, db, opts)

		in := SubmitInput{
			Body:      "A perfectly reasonable first question?",
			FormToken: validFormToken(t),
			ClientKey: "1.2.3.4",
		}
		_, err := svc.Submit(ctx, in)
		require.NoError(t, err)

		in.FormToken = validFormToken(t)
		_, err = svc.Submit(ctx, in)
		assert.ErrorIs(t, err, ErrRateLimited)
	})

	t.Run("rejected submission does not consume the interval", func(t *testing.T) {
		db := openTestDB(t)
		svc := newTestPipeline(t, db, opts)

		in := SubmitInput{Body: "short", FormToken: validFormToken(t), ClientKey: "9.9.9.9"}
		_, err := svc.Submit(ctx, in)
		var vErr *ValidationError
		require.ErrorAs(t, err, &vErr)

		in.Body = "A perfectly reasonable question after the failed one?"
		in.FormToken = validFormToken(t)
		_, err = svc.Submit(ctx, in)
		assert.NoError(t, err)
	})

	t.Run("authenticated submitters can be exempt", func(t *testing.T) {
		db := openTestDB(t)
		svc := newTestPipeline(t, db, SubmissionOptions{LimitEnabled: true, LimitExemptAuth: true, SpamEnabled: true})

		in := SubmitInput{
			Body:          "First of several questions in a row, if that is fine?",
			FormToken:     validFormToken(t),
			ClientKey:     "1.2.3.4",
			Authenticated: true,
		}
		_, err := svc.Submit(ctx, in)
		require.NoError(t, err)

		in.Body = "Second question right away, since I am logged in."
		in.FormToken = validFormToken(t)
		_, err = svc.Submit(ctx, in)
		assert.NoError(t, err)
	})

	t.Run("bad form token is a generic unauthorized", func(t *testing.T) {
		db := openTestDB(t)
		svc := newTestPipeline(t, db, opts)

		for _, token := range []string{"", "not-a-token"} {
			_, err := svc.Submit(ctx, SubmitInput{
				Body:      "A question with a forged token attached.",
				FormToken: token,
				ClientKey: "1.2.3.4",
			})
			assert.ErrorIs(t, err, ErrUnauthorized)
		}
	})

	t.Run("length bounds apply after sanitization", func(t *testing.T) {
		db := openTestDB(t)
		svc := newTestPipeline(t, db, opts)

		// Markup is stripped before counting, leaving only "hi".
		_, err := svc.Submit(ctx, SubmitInput{
			Body:      "<b>hi</b>",
			FormToken: validFormToken(t),
			ClientKey: "1.2.3.4",
		})
		var vErr *ValidationError
		require.ErrorAs(t, err, &vErr)

		_, err = svc.Submit(ctx, SubmitInput{
			Body:      strings.Repeat("long ", 500),
			FormToken: validFormToken(t),
			ClientKey: "1.2.3.4",
		})
		require.ErrorAs(t, err, &vErr)
	})

	t.Run("spam heuristics reject with a vague message", func(t *testing.T) {
		db := openTestDB(t)
		svc := newTestPipeline(t, db, opts)

		_, err := svc.Submit(ctx, SubmitInput{
			Body:      "make money fast with this one weird trick everyone loves",
			FormToken: validFormToken(t),
			ClientKey: "1.2.3.4",
		})
		var sErr *SpamRejection
		require.ErrorAs(t, err, &sErr)
		assert.Equal(t, "keyword:make money", sErr.Heuristic)
		assert.NotContains(t, sErr.Error(), "keyword")
	})

	t.Run("spam filter can be disabled", func(t *testing.T) {
		db := openTestDB(t)
		svc := newTestPipeline(t, db, SubmissionOptions{LimitEnabled: false, SpamEnabled: false})

		_, err := svc.Submit(ctx, SubmitInput{
			Body:      "make money fast with this one weird trick everyone loves",
			FormToken: validFormToken(t),
			ClientKey: "1.2.3.4",
		})
		assert.NoError(t, err)
	})

	t.Run("notify opt-out skips the reviewer mail", func(t *testing.T) {
		db := openTestDB(t)
		users := NewUserStore(db)

		ch := make(chan capturedMail, 2)
		notifier := NewNotifier(users, "admin@example.com")
		notifier.send = func(to, subject, body string) error {
			ch <- capturedMail{to: to, subject: subject, body: body}
			return nil
		}
		svc := NewSubmissionService(
			NewMessageStore(db),
			users,
			nil,
			NewIntervalLimiter(0, nil),
			NewHeuristicSpamChecker(),
			NewRecaptchaVerifier("", 0.5),
			notifier,
			SubmissionOptions{SpamEnabled: true},
		)

		_, err := svc.Submit(ctx, SubmitInput{
			Body:       "A question that should stay quiet, please.",
			FormToken:  validFormToken(t),
			ClientKey:  "1.2.3.4",
			SkipNotify: true,
		})
		require.NoError(t, err)

		_, err = svc.Submit(ctx, SubmitInput{
			Body:      "A question that should page the reviewers.",
			FormToken: validFormToken(t),
			ClientKey: "1.2.3.4",
		})
		require.NoError(t, err)

		m := waitForMail(t, ch)
		assert.Contains(t, m.body, "page the reviewers")
		assert.Empty(t, ch)
	})

	t.Run("unknown assigned user rejected", func(t *testing.T) {
		db := openTestDB(t)
		svc := newTestPipeline(t, db, opts)

		missing := uint(777)
		_, err := svc.Submit(ctx, SubmitInput{
			Body:           "A question aimed at a reviewer who never existed.",
			FormToken:      validFormToken(t),
			ClientKey:      "1.2.3.4",
			AssignedUserID: &missing,
		})
		var vErr *ValidationError
		assert.ErrorAs(t, err, &vErr)
	})
}
