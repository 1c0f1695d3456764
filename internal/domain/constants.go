package domain

// Default policy values applied when a key is missing from the store
const (
	DefaultOpeningTime         = "11:00"
	DefaultClosingTime         = "22:00"
	DefaultSlotIntervalMinutes = 30
	DefaultRollingDays         = 30
	DefaultMinPartySize        = 1
	DefaultMaxPartySize        = 10
	DefaultDailyMaxGuests      = 100
)

// Business validation constants
const (
	MinSlotIntervalMinutes = 5
	MaxSlotIntervalMinutes = 480 // 8 hours
	MaxRollingDays         = 365
	MaxPartySizeLimit      = 100
	MaxDailyGuestsLimit    = 10000
	MaxNameLength          = 200
	MaxEmailLength         = 254
	MaxPhoneLength         = 32
)

// Time format constants
const (
	TimeFormat = "15:04"      // HH:MM
	DateFormat = "2006-01-02" // YYYY-MM-DD
)
