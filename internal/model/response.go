package model

type ErrorResponse struct {
	Error string `json:"error"`
}

type StatusResponse struct {
	Status string `json:"status"`
}

type PingResponse struct {
	Message string `json:"message"`
}

type RootResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// LoginChallengeResponse is returned by the magic-link request
// endpoint. Token is populated only when the deployment surfaces the
// secret inline (console delivery); with email delivery it is empty and
// Status reports that the link was sent.
type LoginChallengeResponse struct {
	Status string `json:"status"`
	Email  string `json:"email"`
	Token  string `json:"token,omitempty"`
}

type MessageResponse struct {
	Message string `json:"message"`
}
