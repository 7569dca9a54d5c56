package dto

type Verify2FAInput struct {
	Email          string `json:"email"`
	LoginAttemptID string `json:"loginAttemptId"`
	Code           string `json:"code"`
}

type VerifyTokenInput struct {
	Token string `json:"token"`
}

type LogoutInput struct {
	Token string `json:"token"`
}

type DeleteAccountInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}
