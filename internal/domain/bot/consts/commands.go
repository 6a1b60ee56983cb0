// Package consts contains constants for the bot domain
package consts

// Command represents a bot command
type Command struct {
	Name        string
	Description string
}

// Bot commands
var (
	CommandStart  = Command{Name: "start", Description: "Start the bot"}
	CommandHelp   = Command{Name: "help", Description: "Show help guide"}
	CommandStats  = Command{Name: "stats", Description: "Show bot statistics"}
	CommandCancel = Command{Name: "cancel", Description: "Cancel current operation"}
	CommandLogin  = Command{Name: "login", Description: "Add a new account"}
	CommandSet    = Command{Name: "set", Description: "Your accounts and settings"}
	CommandAdmin  = Command{Name: "admin", Description: "Admin panel"}
	CommandOTP    = Command{Name: "otp", Description: "Get login codes from accounts"}
	CommandSend   = Command{Name: "send", Description: "Send messages from accounts"}
	CommandJoin   = Command{Name: "join", Description: "Join groups and channels"}
	CommandLeave  = Command{Name: "leave", Description: "Leave groups and channels"}
	CommandReport = Command{Name: "report", Description: "Report a bot, chat, user or post"}
	CommandStop   = Command{Name: "stop", Description: "Stop your running task"}
)

// AllCommands contains all available bot commands for menu registration
var AllCommands = []Command{
	CommandStart,
	CommandHelp,
	CommandStats,
	CommandCancel,
	CommandLogin,
	CommandSet,
	CommandAdmin,
	CommandOTP,
	CommandSend,
	CommandJoin,
	CommandLeave,
	CommandReport,
	CommandStop,
}
