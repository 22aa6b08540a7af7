package constants

// Application Information
const (
	AppName    = "Accounts Service"
	AppVersion = "1.0.0"
)

// Environment Types
const (
	EnvDevelopment = "development"
	EnvStaging     = "staging"
	EnvProduction  = "production"
)

// Default Application Settings
const (
	DefaultPort        = "8080"
	DefaultEnvironment = EnvDevelopment
)

// Refresh token cookie settings
const (
	RefreshTokenCookie = "refreshToken"
	CookiePath         = "/"
)

// Rate limit key prefixes
const (
	RateLimitKeyPrefix = "accounts:rl:"
	RateLimitKeyLogin  = RateLimitKeyPrefix + "login:"
	RateLimitKeyOTP    = RateLimitKeyPrefix + "otp:"
)

// Document titles recognized on upload; any other form field maps to
// DocumentTitleUnknown.
const (
	DocumentTitleAadhar   = "aadharCard"
	DocumentTitlePan      = "panCard"
	DocumentTitlePassport = "passport"
	DocumentTitleUnknown  = "unknown document"
)
