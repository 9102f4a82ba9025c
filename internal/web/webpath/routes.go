package webpath

const (
	Metrics = "/metrics"

	Api    = "/api/v1"
	Health = Api + "/health"

	Auth        = Api + "/auth"
	AuthLogin   = Auth + "/login"
	AuthRefresh = Auth + "/refresh"
	AuthLogout  = Auth + "/logout"
	AuthMe      = Auth + "/me"

	Users    = Api + "/users"
	UserByID = Users + "/:id"

	Todos    = Api + "/todos"
	TodoByID = Todos + "/:id"
)

