package build

import "strings"

var (
	Version = "dev"
	AppName = "AgentRun"
	Slug    = ""
)

func init() {
	if Slug == "" {
		Slug = strings.ToLower(AppName)
	}
}
