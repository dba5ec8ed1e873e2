package dto

// PromoteRequest asks for a role change. Level is only read for the admin role.
type PromoteRequest struct {
	Username string `json:"username" binding:"required"`
	Role     string `json:"role" binding:"required"`
	Level    int    `json:"level"`
}

// FundsRequest credits an account. Amount uses two decimal places, e.g. "25.00".
type FundsRequest struct {
	Amount string `json:"amount" binding:"required"`
}
