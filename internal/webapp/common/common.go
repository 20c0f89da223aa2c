package common

type BasicResponse struct {
	Status  int    `json:"status"`
	Message string `json:"message,omitempty"`
}
