package dto

type SignupInput struct {
	Email          string `json:"email"`
	Password       string `json:"password"`
	Requires2FA    bool   `json:"requires2FA"`
	RecaptchaToken string `json:"recaptchaToken"`
	ClientIP       string `json:"-"`
}

type SignupResponse struct {
	Message string `json:"message"`
}
