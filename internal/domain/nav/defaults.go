package nav

import domainauth "github.com/target/aihub-dashboard/internal/domain/auth"

// Well-known screen paths.
const (
	PathDashboard     = "/user"
	PathChatbot       = "/user/chatbot"
	PathComparison    = "/user/comparison"
	PathCredits       = "/user/credits"
	PathActivity      = "/user/activity"
	PathAdmin         = "/admin"
	PathConversations = "/admin/conversations"
	PathUsers         = "/admin/users"
)

// DefaultRoutes returns the built-in menu.
func DefaultRoutes() []Route {
	user := []domainauth.Capability{domainauth.CapabilityUser}
	admin := []domainauth.Capability{domainauth.CapabilityAdmin}

	return []Route{
		{Title: "Dashboard", Path: PathDashboard},
		{
			Title:    "Chatbot",
			Path:     PathChatbot,
			Requires: user,
			Children: []Route{
				{Title: "OpenAI", Path: PathChatbot + "/openai"},
				{Title: "Anthropic", Path: PathChatbot + "/anthropic"},
				{Title: "Echo", Path: PathChatbot + "/echo"},
			},
		},
		{Title: "Comparison", Path: PathComparison, Requires: user},
		{Title: "Credits", Path: PathCredits, Requires: user},
		{Title: "Activity", Path: PathActivity, Requires: user},
		{
			Title:    "Admin",
			Path:     PathAdmin,
			Requires: admin,
			Children: []Route{
				{Title: "Conversations", Path: PathConversations},
				{Title: "Users", Path: PathUsers},
			},
		},
	}
}

// DefaultTree returns the validated built-in tree.
func DefaultTree() *Tree { return MustTree(DefaultRoutes()) }
