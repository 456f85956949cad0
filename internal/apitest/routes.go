package apitest

// Route paths served by the fake API. The client's base URL is APIPrefix.
const (
	APIPrefix = "/api"

	// Auth Routes
	RouteAuthLogin    = "/api/auth/login"
	RouteAuthRegister = "/api/auth/register"
	RouteAuthRefresh  = "/api/auth/refresh"
	RouteAuthLogout   = "/api/auth/logout"
	RouteAuthMe       = "/api/auth/me"

	// Finance Routes
	RouteTransactions    = "/api/transactions/"
	RouteDashboardStats  = "/api/dashboard/stats"
	RouteDashboardHourly = "/api/dashboard/hourly-calculation"
	RouteUploadExcel     = "/api/upload/excel"
	RouteReportPDF       = "/api/reports/pdf"
	RouteReportExcel     = "/api/reports/excel"

	// Admin Routes
	RouteUsers = "/api/users/"

	RouteHealth = "/api/health"
)
