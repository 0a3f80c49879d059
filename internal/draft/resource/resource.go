package resource

const (
	ProjectName    = "draftden"
	ProjectVersion = "0.1.0"
	GithubUrl      = "https://github.com/draftden/draftden"
)

const Graffiti = `
     _            __ _      _
  __| |_ _ __ _  / _| |_ __| |___ _ _
 / _` + "`" + ` | '_/ _` + "`" + ` |  _|  _/ _` + "`" + ` / -_) ' \
 \__,_|_| \__,_|_|  \__\__,_\___|_||_|
`

const GreetingCLI = "%s %s - multiplayer cube draft server\n%s\n\n"
