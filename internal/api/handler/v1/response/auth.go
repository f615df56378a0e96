package response

import "github.com/mehrdadmmz/StagePass/internal/domain"

type LoginResponse struct {
	Token     string      `json:"token"`
	ExpiresIn int64       `json:"expires_in"`
	User      domain.User `json:"user"`
}
