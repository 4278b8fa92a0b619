package services

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const recaptchaVerifyURL = "https://www.google.com/recaptcha/api/siteverify"

// RecaptchaVerifier scores submissions against Google's reCAPTCHA v3
// siteverify endpoint. With no secret configured every submission passes.
// A network failure rejects the submission: the caller logs the cause and
// shows a generic message.
type RecaptchaVerifier struct {
	Secret   string
	MinScore float64
	Endpoint string
	Client   *http.Client
}

// NewRecaptchaVerifier builds a verifier with a fixed short timeout.
func NewRecaptchaVerifier(secret string, minScore float64) *RecaptchaVerifier {
	return &RecaptchaVerifier{
		Secret:   secret,
		MinScore: minScore,
		Endpoint: recaptchaVerifyURL,
		Client:   &http.Client{Timeout: 10 * time.Second},
	}
}

type recaptchaResult struct {
	Success bool     `json:"success"`
	Score   *float64 `json:"score"`
}

// Verify checks the client-supplied token. A nil return means the
// submission may proceed.
func (v *RecaptchaVerifier) Verify(ctx context.Context, token, remoteIP string) error {
	if v.Secret == "" {
		return nil
	}
	if token == "" {
		return NewValidationError("reCAPTCHA verification failed, please try again")
	}

	form := url.Values{}
	form.Set("secret", v.Secret)
	form.Set("response", token)
	form.Set("remoteip", remoteIP)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, v.Endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return &ExternalServiceError{Op: "recaptcha verify", Err: err}
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := v.Client.Do(req)
	if err != nil {
		return &ExternalServiceError{Op: "recaptcha verify", Err: err}
	}
	defer resp.Body.Close()

	var result recaptchaResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return &ExternalServiceError{Op: "recaptcha decode", Err: err}
	}

	if result.Success && result.Score != nil {
		// v3 scores: 0.0 is very likely a bot, 1.0 very likely a human.
		if *result.Score >= v.MinScore {
			return nil
		}
		return NewValidationError("reCAPTCHA verification failed, please try again")
	}
	if result.Success {
		return nil
	}
	return NewValidationError("reCAPTCHA verification failed, please try again")
}
