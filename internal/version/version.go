package version

// Version is the current version of quickquery.
// Can be overridden at build time with -ldflags "-X ...version.Version=..."
var Version = "1.4.0"

// Name is the application name.
const Name = "quickquery"

// Description is a short description of the application.
const Description = "Schema-driven Oracle SQL script generator"
