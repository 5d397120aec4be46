// Package utils provides bespoke, one off utils that don't make sense to be
// their own package
package utils

// Build metadata, stamped with -ldflags -X at release time.
var (
	Version   = "dev"
	Sha       = "HEAD"
	Buildtime = "dev"
)

// UserAgent identifies product at the current build version, e.g.
// "ragchat/v1.2.0".
func UserAgent(product string) string {
	return product + "/" + Version
}
