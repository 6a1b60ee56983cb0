package consts

// Callback data prefixes. Each prefix is routed to one menu handler; dialog
// choices carry PrefixDialog and are fed to the active dialog with the prefix
// stripped.
const (
	PrefixDialog = "dlg:"
	PrefixSend   = "send_"
	PrefixReport = "report_"
	PrefixOTP    = "otp_"
	PrefixAdmin  = "admin_"
	PrefixUser   = "user_"
)

// Send menu
const (
	SendBot   = "send_bot"
	SendUser  = "send_user"
	SendGroup = "send_group"
	SendStop  = "send_stop"
)

// Report menu
const (
	ReportBot     = "report_bot"
	ReportGroup   = "report_group"
	ReportChannel = "report_channel"
	ReportUser    = "report_user"
	ReportPost    = "report_post"
	ReportStop    = "report_stop"
)

// OTP menu
const (
	OTPSingle        = "otp_single"
	OTPAll           = "otp_all"
	OTPRefresh       = "otp_refresh"
	OTPBack          = "otp_back"
	OTPPagePrefix    = "otp_page_"
	OTPAccountPrefix = "otp_account_"
)

// Admin panel
const (
	AdminBack            = "admin_back"
	AdminAllAccounts     = "admin_all_accounts"
	AdminPagePrefix      = "admin_page_"
	AdminRemoveMenu      = "admin_remove_menu"
	AdminRemoveUser      = "admin_remove_user"
	AdminRemoveAll       = "admin_remove_all"
	AdminRemoveAllYes    = "admin_remove_all_yes"
	AdminRemoveNumbers   = "admin_remove_numbers"
	AdminRemoveInactive  = "admin_remove_inactive"
	AdminRefresh         = "admin_refresh"
	AdminManagement      = "admin_management"
	AdminAdd             = "admin_add"
	AdminRemoveAdmin     = "admin_remove_admin"
	AdminList            = "admin_list"
	AdminChannels        = "admin_channels"
	AdminSetLogPrefix    = "admin_log_"
	AdminRemoveLogPrefix = "admin_unlog_"
	AdminStats           = "admin_stats"
)

// User settings
const (
	UserBack           = "user_back"
	UserAccounts       = "user_accounts"
	UserPagePrefix     = "user_page_"
	UserRemoveMenu     = "user_remove_menu"
	UserRemoveAll      = "user_remove_all"
	UserRemoveAllYes   = "user_remove_all_yes"
	UserRemoveNumbers  = "user_remove_numbers"
	UserRemoveInactive = "user_remove_inactive"
	UserDeletePrefix   = "user_del_"
	UserRefresh        = "user_refresh"
	UserSetLog         = "user_set_log"
	UserRemoveLog      = "user_remove_log"
)

// PageNoop is attached to page indicators that do nothing when pressed.
const PageNoop = "noop"
