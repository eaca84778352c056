package utils

// Application constants
const (
	// Application name
	AppName = "PromoKart"

	// API version
	APIVersion = "v1"

	// Default port
	DefaultPort = "8080"

	// Default pagination limit
	DefaultPaginationLimit = 10

	// Maximum pagination limit
	MaxPaginationLimit = 100

	// Maximum campaign title length
	MaxTitleLength = 100

	// Maximum campaign description length
	MaxDescriptionLength = 500

	// Default qualifying purchase amount for a referral
	DefaultReferralMinPurchase = 500.0

	// Default referral validity in days
	DefaultReferralExpiryDays = 90
)

// Error messages
const (
	ErrInvalidCredentials = "Invalid email or password"
	ErrAccountDisabled    = "Your account has been disabled"
	ErrInvalidToken       = "Invalid or expired token"
	ErrUnauthorized       = "Unauthorized access"
	ErrForbidden          = "Access forbidden"

	ErrRecordNotFound = "Record not found"
	ErrDuplicateEntry = "Duplicate entry"

	ErrInternalServer = "Internal server error"
)

// Success messages
const (
	MsgLoginSuccess  = "Login successful"
	MsgCreateSuccess = "Created successfully"
	MsgUpdateSuccess = "Updated successfully"
	MsgDeleteSuccess = "Deleted successfully"
)
