package inventory

import (
	"context"
	"errors"
	"strings"

	slogctx "github.com/veqryn/slog-context"

	"github.com/ipsfa/inventario-client/internal/apiclient"
	"github.com/ipsfa/inventario-client/internal/resource"
)

const (
	pathResetQuestions = "/password-reset/get-questions/"
	pathResetVerify    = "/password-reset/verify-answers/"
	pathResetPassword  = "/password-reset/set-new-password/"
)

var ErrNoSecurityQuestions = errors.New("the user has no security questions")

type SecurityQuestion struct {
	ID   int64  `json:"id"`
	Text string `json:"texto"`
}

type SecurityAnswer struct {
	QuestionID int64  `json:"pregunta_id"`
	Answer     string `json:"respuesta_plana"`
}

// SecurityQuestions starts a password reset by loading the questions of username.
// All reset calls are sent without credentials.
func (a *AuthService) SecurityQuestions(ctx context.Context, username string) ([]SecurityQuestion, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		verr := &ValidationError{}
		verr.add("username", "the username is required")
		return nil, verr
	}

	var questions []SecurityQuestion
	err := a.api.Post(apiclient.Anonymous(ctx), pathResetQuestions, map[string]string{"username": username}, &questions)
	if err != nil {
		slogctx.Warn(ctx, "Loading security questions failed", "username", username, "error", err)
		return nil, &resource.Error{Message: errorField(err, "error loading the security questions"), Err: err}
	}

	if len(questions) == 0 {
		return nil, ErrNoSecurityQuestions
	}

	return questions, nil
}

// VerifyAnswers checks the answers and returns a single use reset token.
func (a *AuthService) VerifyAnswers(ctx context.Context, username string, answers []SecurityAnswer) (string, error) {
	verr := &ValidationError{}
	if strings.TrimSpace(username) == "" {
		verr.add("username", "the username is required")
	}
	for _, ans := range answers {
		if strings.TrimSpace(ans.Answer) == "" {
			verr.add("respuestas", "every question needs an answer")
			break
		}
	}
	if len(answers) == 0 {
		verr.add("respuestas", "at least one answer is required")
	}
	if err := verr.orNil(); err != nil {
		return "", err
	}

	body := struct {
		Username string           `json:"username"`
		Answers  []SecurityAnswer `json:"respuestas"`
	}{Username: strings.TrimSpace(username), Answers: answers}

	var resp struct {
		ResetToken string `json:"reset_token"`
	}
	if err := a.api.Post(apiclient.Anonymous(ctx), pathResetVerify, body, &resp); err != nil {
		slogctx.Warn(ctx, "Verifying security answers failed", "username", body.Username, "error", err)
		return "", &resource.Error{Message: errorField(err, "error verifying the security answers"), Err: err}
	}

	if resp.ResetToken == "" {
		return "", errors.New("verification response has no reset token")
	}

	return resp.ResetToken, nil
}

// ResetPassword sets the new password with a token from VerifyAnswers and
// returns the confirmation of the server.
func (a *AuthService) ResetPassword(ctx context.Context, token, newPassword, confirm string) (string, error) {
	verr := &ValidationError{}
	if token == "" {
		verr.add("reset_token", "the reset token is required")
	}
	if newPassword == "" {
		verr.add("new_password", "the new password is required")
	}
	if newPassword != confirm {
		verr.add("new_password_confirm", "the passwords do not match")
	}
	if err := verr.orNil(); err != nil {
		return "", err
	}

	body := map[string]string{
		"reset_token":          token,
		"new_password":         newPassword,
		"new_password_confirm": confirm,
	}

	var resp struct {
		Status string `json:"status"`
	}
	if err := a.api.Post(apiclient.Anonymous(ctx), pathResetPassword, body, &resp); err != nil {
		slogctx.Warn(ctx, "Password reset failed", "error", err)
		return "", &resource.Error{Message: errorField(err, "error resetting the password"), Err: err}
	}

	if resp.Status == "" {
		resp.Status = "Password reset."
	}

	return resp.Status, nil
}
