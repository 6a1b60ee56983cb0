// Package dto contains data transfer objects for the bot domain
package dto

// Request represents one inbound command or button press
type Request struct {
	UserID    int64
	Username  string
	FirstName string
	// Data is the callback payload of a button press
	Data string
}
