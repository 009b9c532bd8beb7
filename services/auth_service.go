package services

import (
	"context"
	"log"
	"net/http"

	"github.com/techagentng/healthtrack/config"
	"github.com/techagentng/healthtrack/db"
	apiError "github.com/techagentng/healthtrack/errors"
	"github.com/techagentng/healthtrack/i18n"
	"github.com/techagentng/healthtrack/models"
	"github.com/techagentng/healthtrack/views"
)

// AuthService handles the mock phone sign-in. No code is sent and any
// complete code is accepted.
type AuthService interface {
	RequestOTP(ctx context.Context, req *models.LoginRequest) (string, *apiError.Error)
	VerifyOTP(ctx context.Context, form *views.OTPForm) *apiError.Error
}

// authService struct
type authService struct {
	Config *config.Config
	store  db.Store
	msg    Translator
}

// NewAuthService instantiate an authService
func NewAuthService(store db.Store, msg Translator, conf *config.Config) AuthService {
	return &authService{
		Config: conf,
		store:  store,
		msg:    msg,
	}
}

// RequestOTP stores the phone number on the profile and returns the
// message shown above the code fields.
func (s *authService) RequestOTP(ctx context.Context, req *models.LoginRequest) (string, *apiError.Error) {
	if err := req.Normalize(); err != nil {
		return "", apiError.ErrBadRequest
	}
	if err := models.ValidateStruct(req); err != nil {
		return "", apiError.New(err.Error(), http.StatusBadRequest)
	}

	phone := req.Digits()
	if err := s.store.SetPhone(ctx, phone); err != nil {
		log.Printf("RequestOTP error: %v", err)
		return "", apiError.ErrInternalServerError
	}
	log.Printf("OTP requested for %s", phone)

	return s.msg.T(i18n.OTPSent, map[string]interface{}{
		"Digits": views.OTPLength,
		"Phone":  req.Phone,
	}), nil
}

func (s *authService) VerifyOTP(ctx context.Context, form *views.OTPForm) *apiError.Error {
	if form == nil || !form.Complete() {
		return apiError.New(s.msg.T(i18n.IncompleteOTP, map[string]interface{}{
			"Digits": views.OTPLength,
		}), http.StatusBadRequest)
	}
	log.Printf("OTP verified (%d digits)", len([]rune(form.Code())))
	return nil
}
